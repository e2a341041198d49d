package dice

import "fmt"

// Range is a half-open integer interval [Min, Max) from which values are drawn
// uniformly.
type Range struct {
	Min int
	Max int
}

// Validate reports whether the range contains at least one value.
//
// Postcondition: Returns nil iff Max > Min.
func (r Range) Validate() error {
	if r.Max <= r.Min {
		return fmt.Errorf("dice: empty range %s", r)
	}
	return nil
}

// Draw returns Min + src.Intn(Max-Min).
//
// Precondition: r is valid; src is non-nil.
// Postcondition: Min <= result < Max.
func (r Range) Draw(src Source) int {
	if r.Max <= r.Min {
		panic("dice: Range.Draw precondition violated: empty range " + r.String())
	}
	return r.Min + src.Intn(r.Max-r.Min)
}

// String renders the range in interval notation, e.g. "[5, 12)".
func (r Range) String() string {
	return fmt.Sprintf("[%d, %d)", r.Min, r.Max)
}
