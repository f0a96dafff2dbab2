package protocol

import (
	"errors"
	"strings"
	"testing"
)

func TestAppendSampleWireFormat(t *testing.T) {
	got := string(AppendSample(nil, 1000, 0, 2048))
	want := "S,1000,0,2048*E39F\r\n"
	if got != want {
		t.Errorf("AppendSample = %q, want %q", got, want)
	}
}

func TestAppendPreservesPrefix(t *testing.T) {
	buf := []byte("garbage")
	buf = AppendSample(buf, 42, 1, 65535)
	if got, want := string(buf), "garbageS,42,1,65535*FFAC\r\n"; got != want {
		t.Errorf("AppendSample with prefix = %q, want %q", got, want)
	}
}

func TestAppendNoteWireFormat(t *testing.T) {
	got := string(AppendNote(nil, "no sample strobe"))
	want := "N,no sample strobe*5D31\r\n"
	if got != want {
		t.Errorf("AppendNote = %q, want %q", got, want)
	}
}

func TestParseLines(t *testing.T) {
	testCases := []struct {
		name string
		line []byte
		want Line
	}{
		{
			name: "boot",
			line: AppendBoot(nil, "hello, world"),
			want: Line{Kind: KindBoot, Text: "hello, world"},
		},
		{
			name: "note",
			line: AppendNote(nil, "no sample strobe: pio busy"),
			want: Line{Kind: KindNote, Text: "no sample strobe: pio busy"},
		},
		{
			name: "sample",
			line: AppendSample(nil, 1000, 0, 2048),
			want: Line{Kind: KindSample, Millis: 1000, Channel: 0, Raw: 2048},
		},
		{
			name: "sample near wrap",
			line: AppendSample(nil, ^uint64(0), 7, 1),
			want: Line{Kind: KindSample, Millis: ^uint64(0), Channel: 7, Raw: 1},
		},
		{
			name: "error",
			line: AppendError(nil, 1500, 0, 3, "conversion timeout"),
			want: Line{Kind: KindError, Millis: 1500, Channel: 0, Attempts: 3, Text: "conversion timeout"},
		},
		{
			name: "error text with separators",
			line: AppendError(nil, 7, 2, 1, "bad*value,\nagain"),
			want: Line{Kind: KindError, Millis: 7, Channel: 2, Attempts: 1, Text: "bad*value, again"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if len(tc.line) > MaxLine {
				t.Errorf("line is %d bytes, longer than MaxLine", len(tc.line))
			}
			got, err := Parse(string(tc.line))
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tc.line, err)
			}
			if got != tc.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tc.line, got, tc.want)
			}
		})
	}
}

func TestParseRejects(t *testing.T) {
	good := strings.TrimRight(string(AppendSample(nil, 1000, 0, 2048)), "\r\n")

	testCases := []struct {
		name string
		line string
		err  error
	}{
		{"no checksum", "S,1000,0,2048", ErrMalformed},
		{"short checksum", "S,1000,0,2048*E39", ErrMalformed},
		{"non hex checksum", "S,1000,0,2048*ZZZZ", ErrMalformed},
		{"flipped digit", strings.Replace(good, "1000", "1001", 1), ErrChecksum},
		{"missing field", "S,1000,0" + trailer("S,1000,0"), ErrMalformed},
		{"raw overflow", "S,1,0,70000" + trailer("S,1,0,70000"), ErrMalformed},
		{"unknown kind", "X,1" + trailer("X,1"), ErrKind},
		{"no separator", "S" + trailer("S"), ErrMalformed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.line)
			if !errors.Is(err, tc.err) {
				t.Errorf("Parse(%q) error = %v, want %v", tc.line, err, tc.err)
			}
		})
	}
}

// trailer returns a valid "*XXXX" suffix for body.
func trailer(body string) string {
	crc := CRC16String(body)
	return string([]byte{'*',
		hexDigits[crc>>12&0xF], hexDigits[crc>>8&0xF],
		hexDigits[crc>>4&0xF], hexDigits[crc&0xF]})
}
