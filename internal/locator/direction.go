package locator

import "fmt"

// Direction selects which region relative to a row key a lookup returns.
type Direction int

const (
	// Current returns the region whose range contains the row.
	Current Direction = iota
	// Before returns the region whose end key equals the row exactly. Used
	// when a reverse scan continues from an exclusive boundary.
	Before
	// After returns the region whose start key equals the row exactly. Used
	// when a forward scan continues past the current region's end.
	After
)

func (d Direction) String() string {
	switch d {
	case Current:
		return "current"
	case Before:
		return "before"
	case After:
		return "after"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// Validate rejects unknown directions before any I/O happens.
func (d Direction) Validate() error {
	switch d {
	case Current, Before, After:
		return nil
	default:
		return fmt.Errorf("%w: %d", ErrInvalidDirection, int(d))
	}
}
