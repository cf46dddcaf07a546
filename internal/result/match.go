package result

// Pattern selects which results a match arm accepts.
type Pattern int32

const (
	// MatchOk accepts ok results.
	MatchOk Pattern = iota
	// MatchErr accepts error results.
	MatchErr
	// MatchWildcard accepts anything.
	MatchWildcard
)

// MatchArm pairs a pattern with its handler. ExpectedTypeID, when nonzero,
// narrows the arm to results carrying that runtime type id; zero means any
// type. An arm with a nil handler never fires, even when its pattern
// matches, so the search continues past it.
type MatchArm struct {
	Pattern        Pattern
	ExpectedTypeID uint32
	Handler        func(Result)
}

// NoMatch is returned by Match when no arm fired.
const NoMatch = -1

// Match dispatches r to the first arm that accepts it and returns that
// arm's index. Matching is first-match-wins, not most-specific-wins, so a
// wildcard arm placed before a narrower one shadows it; arm order is part
// of the caller's contract.
func Match(r Result, arms []MatchArm) int {
	for i := range arms {
		arm := &arms[i]
		matches := false

		switch arm.Pattern {
		case MatchOk:
			matches = r.tag == tagOk
		case MatchErr:
			matches = r.tag == tagErr
		case MatchWildcard:
			matches = true
		}
		if matches && arm.ExpectedTypeID != 0 && arm.Pattern != MatchWildcard {
			matches = r.typeID == arm.ExpectedTypeID
		}

		if matches && arm.Handler != nil {
			arm.Handler(r)
			return i
		}
	}
	return NoMatch
}
