package eventbus

import (
	"fmt"
	"strings"
)

// CancelMode decides how a canceled event affects the handlers still to run.
// Events that are not event.Cancelable are never affected.
type CancelMode uint8

const (
	// Respect skips handlers that did not opt in with Tag.RunIfCanceled
	// once the event is canceled. It is the zero value and the default.
	Respect CancelMode = iota

	// Ignore runs every handler regardless of cancellation.
	Ignore

	// Enforce stops the dispatch as soon as the event is canceled,
	// and does not start it for an event that is already canceled.
	Enforce
)

// String returns the lower-case name of the mode.
func (m CancelMode) String() string {
	switch m {
	case Respect:
		return "respect"
	case Ignore:
		return "ignore"
	case Enforce:
		return "enforce"
	default:
		return fmt.Sprintf("CancelMode(%d)", uint8(m))
	}
}

// ParseCancelMode parses a mode name, ignoring case.
func ParseCancelMode(s string) (CancelMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "respect", "":
		return Respect, nil
	case "ignore":
		return Ignore, nil
	case "enforce":
		return Enforce, nil
	default:
		return Respect, fmt.Errorf("%w: %q", ErrUnknownCancelMode, s)
	}
}

// UnmarshalText lets config loaders decode a CancelMode from its name.
func (m *CancelMode) UnmarshalText(text []byte) error {
	mode, err := ParseCancelMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// MarshalText encodes the mode as its name.
func (m CancelMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}
