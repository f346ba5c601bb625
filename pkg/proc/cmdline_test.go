package proc

import (
	"strings"
	"testing"
)

func TestBuildCommandLine(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"single", []string{"make.exe"}, "make.exe "},
		{"bare", []string{"make.exe", "-j4", "all"}, "make.exe -j4 all "},
		{"quoted", []string{`C:\Program Files\x.exe`, "a b", "c"}, `"C:\Program Files\x.exe" "a b" c `},
		{"quote without space", []string{"sh", `-c`, `echo"hi"`}, `sh -c echo"hi" `},
		{"empty", []string{"sh", ""}, "sh  "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildCommandLine(tt.args); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestSplitCommandLine(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected []string
	}{
		{
			name:     "generic test case",
			in:       `field"A" "fieldB" fie"l'd"C "yet another field"`,
			expected: []string{"fieldA", "fieldB", "fiel'dC", "yet another field"},
		},
		{
			name:     "with empty string in the end",
			in:       `field"A" "" `,
			expected: []string{"fieldA", ""},
		},
		{
			name:     "with empty string at the beginning",
			in:       ` "" field"A"`,
			expected: []string{"", "fieldA"},
		},
		{
			name:     "lots of spaces",
			in:       `    field"A"   `,
			expected: []string{"fieldA"},
		},
		{
			name:     "tabs are not separators",
			in:       "a\tb \"c d\"\t e",
			expected: []string{"a\tb", "c d\t", "e"},
		},
		{
			name:     "backslashes are not escapes",
			in:       `"C:\dir name\" x`,
			expected: []string{`C:\dir name\`, "x"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := SplitCommandLine(tt.in)
			if len(tt.expected) != len(out) {
				t.Fatalf("expected %#v, got %#v (len mismatch)", tt.expected, out)
			}
			for i := range tt.expected {
				if tt.expected[i] != out[i] {
					t.Fatalf("expected %#v, got %#v (mismatch at %d)", tt.expected, out, i)
				}
			}
		})
	}
}

func checkRoundTrip(t testing.TB, args []string) {
	t.Helper()
	cmdline := BuildCommandLine(args)
	out := SplitCommandLine(cmdline)
	if len(out) != len(args) {
		t.Fatalf("expected %#v, got %#v from %q (len mismatch)", args, out, cmdline)
	}
	for i := range args {
		if out[i] != args[i] {
			t.Fatalf("expected %#v, got %#v from %q (mismatch at %d)", args, out, cmdline, i)
		}
	}
}

func TestCommandLineRoundTrip(t *testing.T) {
	for _, args := range [][]string{
		{"a b"},
		{"target.exe", "with space", "bare"},
		{`C:\Program Files\Git\bin\bash.exe`, "-c", "echo hello world"},
		{"x", "  leading and trailing  ", "y"},
		{"tab\tinside", "\tleading", "trailing\t", "mixed\t and space"},
		{"bytes\xff\xfe", "not utf8 \xc3"},
	} {
		checkRoundTrip(t, args)
	}
}

// FuzzCommandLineRoundTrip checks that non empty arguments without double
// quotes survive BuildCommandLine followed by SplitCommandLine. Arguments
// are separated by a NUL byte in the fuzzer input.
func FuzzCommandLineRoundTrip(f *testing.F) {
	f.Add("target.exe\x00a b\x00c")
	f.Add("a b")
	f.Add(`C:\Program Files\x.exe` + "\x00--flag=some value")
	f.Add("tab\there\x00\tx \x00\xff")
	f.Fuzz(func(t *testing.T, in string) {
		args := strings.Split(in, "\x00")
		for _, arg := range args {
			if arg == "" || strings.ContainsRune(arg, '"') {
				t.Skip()
			}
		}
		checkRoundTrip(t, args)
	})
}
