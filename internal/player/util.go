package player

import "strings"

// ParseArgs splits a string of extra command-line arguments for the
// player binary, keeping quoted sections together.  Quotes themselves
// are not part of the resulting arguments.
func ParseArgs(argsString string) []string {
	var args []string
	var current strings.Builder
	inQuotes := false

	for _, r := range argsString {
		switch r {
		case '"', '\'':
			inQuotes = !inQuotes
		case ' ':
			if inQuotes {
				current.WriteRune(r)
			} else if current.Len() > 0 {
				args = append(args, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}

	if current.Len() > 0 {
		args = append(args, current.String())
	}

	return args
}
