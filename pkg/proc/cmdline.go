package proc

import "strings"

// BuildCommandLine joins args into a single command line suitable for
// process creation. Arguments containing a space are wrapped in double
// quotes, every argument is followed by a single space.
// Double quotes inside an argument are not escaped, an argument containing
// both a space and a double quote will not survive the round trip.
func BuildCommandLine(args []string) string {
	var b strings.Builder
	for _, arg := range args {
		if strings.Contains(arg, " ") {
			b.WriteByte('"')
			b.WriteString(arg)
			b.WriteByte('"')
		} else {
			b.WriteString(arg)
		}
		b.WriteByte(' ')
	}
	return b.String()
}

// SplitCommandLine splits a command line built by BuildCommandLine back
// into its arguments. Fields are separated by runs of spaces, spaces
// between double quotes do not separate fields. Tabs and other whitespace
// are part of the field. There is no escape character and the input is
// handled byte by byte, so invalid UTF-8 is preserved.
func SplitCommandLine(in string) []string {
	type stateEnum int
	const (
		inSpace stateEnum = iota
		inField
		inQuote
	)
	state := inSpace
	r := []string{}
	var buf strings.Builder

	for i := 0; i < len(in); i++ {
		ch := in[i]
		switch state {
		case inSpace:
			if ch == '"' {
				state = inQuote
			} else if ch != ' ' {
				buf.WriteByte(ch)
				state = inField
			}

		case inField:
			if ch == '"' {
				state = inQuote
			} else if ch == ' ' {
				r = append(r, buf.String())
				buf.Reset()
				state = inSpace
			} else {
				buf.WriteByte(ch)
			}

		case inQuote:
			if ch == '"' {
				state = inField
			} else {
				buf.WriteByte(ch)
			}
		}
	}

	if state != inSpace {
		r = append(r, buf.String())
	}

	return r
}
