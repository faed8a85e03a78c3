// Package diff provides functions to compare program output with the expected
// answer and report the first difference.
//
// Both sides are normalized the same way before comparison: leading and
// trailing white spaces are removed and "\r\n" line endings become "\n".
// Everything else, including white spaces inside the output, must match exactly.
package diff

import (
	"fmt"
	"strings"
)

// Normalize trims surrounding white spaces and unifies line endings
func Normalize(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "\r\n", "\n")
}

// Equal reports whether actual equals expected after normalization
func Equal(actual, expected string) bool {
	return Normalize(actual) == Normalize(expected)
}

// Compare compares actual with expected.
// if they are the same after normalization, no error is returned
// otherwise the error describes the first different line
func Compare(expected, actual string) error {
	exp, act := Normalize(expected), Normalize(actual)
	if exp == act {
		return nil
	}
	expLines := strings.Split(exp, "\n")
	actLines := strings.Split(act, "\n")

	for i := 0; ; i++ {
		e, hasExp := lineAt(expLines, i)
		a, hasAct := lineAt(actLines, i)
		switch {
		case hasExp && hasAct:
			if e != a {
				return newErr(i+1, e, a)
			}
		case hasExp:
			return fmt.Errorf("actual output ended at line %d, expected: %v", i+1, e)
		case hasAct:
			return fmt.Errorf("actual have more content at line %d: %v", i+1, a)
		default:
			// unreachable as the normalized strings differ
			return newErr(i+1, "", "")
		}
	}
}

func newErr(line int, exp, act string) error {
	return fmt.Errorf("At line %d,\nexpected: %v\nactual: %v", line, exp, act)
}

func lineAt(lines []string, i int) (string, bool) {
	if i < len(lines) {
		return lines[i], true
	}
	return "", false
}
