// Package questions is the fixed set of security questions an account may
// choose from at sign-up.
package questions

var all = []string{
	"What city were you born in?",
	"What was the name of your first pet?",
	"What was your mother's maiden name?",
	"What was the name of your elementary school?",
	"What was your childhood nickname?",
	"What street did you grow up on?",
	"What was your favorite food as a child?",
	"What was the make of your first car?",
}

// All returns the questions in presentation order. The slice is a copy.
func All() []string {
	out := make([]string, len(all))
	copy(out, all)
	return out
}

// IsKnown reports whether q is one of the fixed questions. Matching is exact.
func IsKnown(q string) bool {
	for _, candidate := range all {
		if candidate == q {
			return true
		}
	}
	return false
}

// ByNumber resolves a 1-based menu choice.
func ByNumber(n int) (string, bool) {
	if n < 1 || n > len(all) {
		return "", false
	}
	return all[n-1], true
}
