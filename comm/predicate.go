package comm

import (
	"fmt"
	"strings"
)

// NoReply is the response text reported by an exchange whose predicate was
// built with None: the command was written once and no reply was awaited.
const NoReply = "no response expected"

// Predicate decides whether the text accumulated so far completes an
// exchange. The constructors in this package cover the reply disciplines of
// the supported instruments; custom implementations may apply any rule.
//
// Accept is called with the full accumulated text after every poll that
// yielded data, so implementations must be cheap and side-effect free.
type Predicate interface {
	Accept(response string) bool
	fmt.Stringer
}

type exactPredicate string

func (p exactPredicate) Accept(response string) bool {
	return response == string(p)
}

func (p exactPredicate) String() string {
	return fmt.Sprintf("exact(%q)", string(p))
}

// Exact returns a Predicate that accepts only a reply equal to want.
func Exact(want string) Predicate {
	return exactPredicate(want)
}

type endsWithPredicate string

func (p endsWithPredicate) Accept(response string) bool {
	if response == "" {
		return false
	}

	return strings.IndexByte(string(p), response[len(response)-1]) >= 0
}

func (p endsWithPredicate) String() string {
	return fmt.Sprintf("endsWithAny(%q)", string(p))
}

// EndsWithAny returns a Predicate that accepts any non-empty reply whose
// final character is one of set. This matches prompt-terminated protocols,
// e.g. a motion controller that ends every report with '^'.
func EndsWithAny(set string) Predicate {
	return endsWithPredicate(set)
}

type noReplyPredicate struct{}

func (noReplyPredicate) Accept(string) bool { return true }

func (noReplyPredicate) String() string { return "none" }

// None returns the Predicate for commands that produce no reply. An
// exchange using it writes the command once and returns immediately with
// NoReply as the response text; the polling loop is never entered.
func None() Predicate {
	return noReplyPredicate{}
}
