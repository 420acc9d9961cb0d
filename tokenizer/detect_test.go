package tokenizer

import "testing"

func TestDetectNewline(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		sample string
		want   string
	}{
		{"crlf dominant", "a,b\r\nc,d\r\ne,f", "\r\n"},
		{"lf dominant", "a,b\nc,d\ne,f", "\n"},
		{"bare cr dominant", "a,b\rc,d\re,f", "\r"},
		{"empty defaults to lf", "", "\n"},
		{"no terminators defaults to lf", "a,b,c", "\n"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := DetectNewline(tc.sample); got != tc.want {
				t.Errorf("DetectNewline(%q) = %q, want %q", tc.sample, got, tc.want)
			}
		})
	}
}

func TestDetectDelimiter(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		sample string
		want   rune
		ok     bool
	}{
		{"comma", "a,b,c\n1,2,3\n4,5,6", ',', true},
		{"tab", "a\tb\tc\n1\t2\t3\n4\t5\t6", '\t', true},
		{"semicolon", "a;b\n1;2\n3;4", ';', true},
		{"single column has no usable delimiter", "justonecolumn\nanother\nmore", ',', false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := DetectDelimiter(tc.sample, "\n", DefaultDelimitersToGuess)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if ok && got != tc.want {
				t.Errorf("delimiter = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDetectDelimiter_PrefersConsistentFieldCount(t *testing.T) {
	t.Parallel()
	// Every line has exactly one comma-separated pair but a stray semicolon
	// only on one line; comma must win on consistency even though the
	// semicolon also splits that first line into two fields.
	sample := "a,b;x\n1,2\n3,4"
	got, ok := DetectDelimiter(sample, "\n", DefaultDelimitersToGuess)
	if !ok {
		t.Fatal("expected a usable delimiter")
	}
	if got != ',' {
		t.Errorf("delimiter = %q, want ','", got)
	}
}
