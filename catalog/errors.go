package catalog

import (
	"errors"
	"fmt"
)

// Kind classifies catalog failures.
type Kind int

const (
	// KindStoreInit: the backing store could not be opened, its schema could
	// not be created, or a stored record could not be parsed at load.
	KindStoreInit Kind = iota + 1
	// KindStoreWrite: a mutation could not be made durable.
	KindStoreWrite
	// KindInvalidInput: an argument violated a precondition. Nothing was read
	// or written.
	KindInvalidInput
	// KindNotFound: a query matched nothing, or a point lookup missed.
	KindNotFound
)

// Sentinels matching each Kind through errors.Is.
var (
	ErrStoreInit    = errors.New("catalog: store initialization failed")
	ErrStoreWrite   = errors.New("catalog: store write failed")
	ErrInvalidInput = errors.New("catalog: invalid input")
	ErrNotFound     = errors.New("catalog: not found")
)

func (k Kind) String() string {
	switch k {
	case KindStoreInit:
		return "store_init"
	case KindStoreWrite:
		return "store_write"
	case KindInvalidInput:
		return "invalid_input"
	case KindNotFound:
		return "not_found"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindStoreInit:
		return ErrStoreInit
	case KindStoreWrite:
		return ErrStoreWrite
	case KindInvalidInput:
		return ErrInvalidInput
	case KindNotFound:
		return ErrNotFound
	default:
		return nil
	}
}

// Error is the concrete error returned by every Store operation.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("catalog: %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("catalog: %s: %s: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind sentinel and the cause.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := e.Kind.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// KindOf returns the Kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Kind
	}
	return 0
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func notFound(op, format string, args ...any) *Error {
	return newError(KindNotFound, op, fmt.Errorf(format, args...))
}

func invalidInput(op string, err error) *Error {
	return newError(KindInvalidInput, op, err)
}

// IsNotFound reports whether err is a KindNotFound failure.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsInvalidInput reports whether err is a KindInvalidInput failure.
func IsInvalidInput(err error) bool { return errors.Is(err, ErrInvalidInput) }
