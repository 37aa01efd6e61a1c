package fiscal

import "fmt"

// InputValidationError reports a transaction or request rejected before
// replay: non-positive quantity, negative price, malformed date, unknown
// transaction kind.
type InputValidationError struct {
	Msg string
}

func (e *InputValidationError) Error() string { return e.Msg }

// invalidf builds an *InputValidationError the fmt.Errorf way.
func invalidf(format string, args ...any) error {
	return &InputValidationError{Msg: fmt.Sprintf(format, args...)}
}

// InsufficientLotsError reports a Sell or TransferOut that exceeds the open
// quantity of a ticker at the requested date. The engine never clamps: the
// whole operation is rejected with the shortfall.
type InsufficientLotsError struct {
	Ticker    string
	On        Date
	Requested Quantity
	Available Quantity
}

func (e *InsufficientLotsError) Error() string {
	return fmt.Sprintf("on %s, cannot dispose %s of %s, only %s available",
		e.On, e.Requested, e.Ticker, e.Available)
}

// ConfigurationError reports an unusable tax bracket table: empty,
// overlapping, non-contiguous, or not covering [0, +inf).
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string { return e.Msg }

// configf builds a *ConfigurationError the fmt.Errorf way.
func configf(format string, args ...any) error {
	return &ConfigurationError{Msg: fmt.Sprintf(format, args...)}
}

// AmbiguousOrderingWarning flags two same-ticker transactions sharing a date
// with no explicit tie-break. Replay resolves them deterministically by
// insertion order; the warning is surfaced for audit only.
type AmbiguousOrderingWarning struct {
	Ticker string
	On     Date
	IDs    [2]string // the two transaction ids, in replay order
}

func (w AmbiguousOrderingWarning) String() string {
	return fmt.Sprintf("on %s, transactions %s and %s of %s share a date; replayed in insertion order",
		w.On, w.IDs[0], w.IDs[1], w.Ticker)
}
