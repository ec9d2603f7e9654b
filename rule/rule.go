// Package rule holds the equivalence rules used to validate vertex values: how a value is parsed from its text, and
// when a computed value is close enough to the reference value.
package rule

import (
	"errors"
	"strconv"
)

// Primitive vertex value types. Values stay unboxed in datasets, so only fixed size numbers are allowed.
type Value interface {
	int64 | float64
}

// A Rule is stateless: Parse and Match may be called from many goroutines at once.
type Rule[T Value] interface {
	// Parse interprets the value text of one line. Returns a *ParseError when the text is not a value of type T.
	Parse(raw string) (T, error)
	// Match reports whether the candidate value is acceptably equivalent to the reference value.
	Match(candidate T, reference T) bool
}

// ParseError is a value text that could not be interpreted. It only ever affects the line it came from.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return "invalid value '" + e.Raw + "': " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

var (
	ErrEmpty    = errors.New("empty value")
	ErrNaN      = errors.New("not a number")
	ErrNegative = errors.New("negative distance")
)

func parseInt(raw string) (int64, error) {
	if raw == "" {
		return 0, &ParseError{Raw: raw, Err: ErrEmpty}
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &ParseError{Raw: raw, Err: unwrapNum(err)}
	}
	return v, nil
}

// Accepts "inf", "infinity" and their signed forms (any case), as strconv does.
func parseFloat(raw string) (float64, error) {
	if raw == "" {
		return 0, &ParseError{Raw: raw, Err: ErrEmpty}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &ParseError{Raw: raw, Err: unwrapNum(err)}
	}
	return v, nil
}

func unwrapNum(err error) error {
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return numErr.Err
	}
	return err
}
