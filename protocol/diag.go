// Package protocol implements the line format of the diagnostic stream.
//
// Each line is a comma separated record followed by '*' and the CRC16 of
// everything before the '*', as four upper-case hex digits:
//
//	B,msclock 0.1.0*AA06                  boot banner
//	S,1000,0,2048*E39F                    sample: millis, channel, raw value
//	E,1500,0,3,conversion timeout*1DD0    read failure: millis, channel, attempts, message
//	N,no sample strobe*5D31               free text notice
//
// Lines end with "\r\n" on the wire; Parse accepts them with or without it.
package protocol

import (
	"errors"
	"strconv"
	"strings"
)

// Version is the firmware version reported in the boot banner.
const Version = "0.1.0"

// MaxLine is the longest line the firmware emits, terminator included.
const MaxLine = 96

// Kind is the record type, the first field of a line.
type Kind byte

const (
	KindBoot   Kind = 'B'
	KindSample Kind = 'S'
	KindError  Kind = 'E'
	KindNote   Kind = 'N'
)

var (
	ErrMalformed = errors.New("malformed diagnostic line")
	ErrChecksum  = errors.New("diagnostic line checksum mismatch")
	ErrKind      = errors.New("unknown diagnostic line kind")
)

// Line is one decoded diagnostic record. Fields not carried by Kind are zero.
type Line struct {
	Kind     Kind
	Millis   uint64
	Channel  uint8
	Raw      uint16
	Attempts uint8
	Text     string
}

const hexDigits = "0123456789ABCDEF"

// AppendBoot appends a boot banner line to dst.
func AppendBoot(dst []byte, text string) []byte {
	start := len(dst)
	dst = append(dst, byte(KindBoot), ',')
	dst = appendText(dst, text)
	return appendTrailer(dst, start)
}

// AppendNote appends a notice line to dst.
func AppendNote(dst []byte, text string) []byte {
	start := len(dst)
	dst = append(dst, byte(KindNote), ',')
	dst = appendText(dst, text)
	return appendTrailer(dst, start)
}

// AppendSample appends a sample line to dst.
func AppendSample(dst []byte, ms uint64, ch uint8, raw uint16) []byte {
	start := len(dst)
	dst = append(dst, byte(KindSample), ',')
	dst = strconv.AppendUint(dst, ms, 10)
	dst = append(dst, ',')
	dst = strconv.AppendUint(dst, uint64(ch), 10)
	dst = append(dst, ',')
	dst = strconv.AppendUint(dst, uint64(raw), 10)
	return appendTrailer(dst, start)
}

// AppendError appends a read failure line to dst.
func AppendError(dst []byte, ms uint64, ch uint8, attempts uint8, msg string) []byte {
	start := len(dst)
	dst = append(dst, byte(KindError), ',')
	dst = strconv.AppendUint(dst, ms, 10)
	dst = append(dst, ',')
	dst = strconv.AppendUint(dst, uint64(ch), 10)
	dst = append(dst, ',')
	dst = strconv.AppendUint(dst, uint64(attempts), 10)
	dst = append(dst, ',')
	dst = appendText(dst, msg)
	return appendTrailer(dst, start)
}

// appendText copies s, replacing line terminators so a record stays on one
// line.
func appendText(dst []byte, s string) []byte {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\r' || c == '\n' {
			c = ' '
		}
		dst = append(dst, c)
	}
	return dst
}

func appendTrailer(dst []byte, start int) []byte {
	crc := CRC16(dst[start:])
	return append(dst, '*',
		hexDigits[crc>>12&0xF], hexDigits[crc>>8&0xF],
		hexDigits[crc>>4&0xF], hexDigits[crc&0xF],
		'\r', '\n')
}

// Parse decodes one line and verifies its checksum.
func Parse(s string) (Line, error) {
	s = strings.TrimRight(s, "\r\n")
	star := strings.LastIndexByte(s, '*')
	if star < 0 || len(s)-star != 5 {
		return Line{}, ErrMalformed
	}
	want, err := strconv.ParseUint(s[star+1:], 16, 16)
	if err != nil {
		return Line{}, ErrMalformed
	}
	body := s[:star]
	if CRC16String(body) != uint16(want) {
		return Line{}, ErrChecksum
	}
	if len(body) < 2 || body[1] != ',' {
		return Line{}, ErrMalformed
	}

	l := Line{Kind: Kind(body[0])}
	rest := body[2:]
	switch l.Kind {
	case KindBoot, KindNote:
		l.Text = rest
		return l, nil
	case KindSample:
		f := strings.Split(rest, ",")
		if len(f) != 3 {
			return Line{}, ErrMalformed
		}
		if err := parseCommon(&l, f[0], f[1]); err != nil {
			return Line{}, err
		}
		raw, err := strconv.ParseUint(f[2], 10, 16)
		if err != nil {
			return Line{}, ErrMalformed
		}
		l.Raw = uint16(raw)
		return l, nil
	case KindError:
		f := strings.SplitN(rest, ",", 4)
		if len(f) != 4 {
			return Line{}, ErrMalformed
		}
		if err := parseCommon(&l, f[0], f[1]); err != nil {
			return Line{}, err
		}
		attempts, err := strconv.ParseUint(f[2], 10, 8)
		if err != nil {
			return Line{}, ErrMalformed
		}
		l.Attempts = uint8(attempts)
		l.Text = f[3]
		return l, nil
	default:
		return Line{}, ErrKind
	}
}

func parseCommon(l *Line, ms, ch string) error {
	v, err := strconv.ParseUint(ms, 10, 64)
	if err != nil {
		return ErrMalformed
	}
	c, err := strconv.ParseUint(ch, 10, 8)
	if err != nil {
		return ErrMalformed
	}
	l.Millis = v
	l.Channel = uint8(c)
	return nil
}
