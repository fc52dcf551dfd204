package service

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyPayload           = errors.New("file is empty")
	ErrPayloadTooLarge        = errors.New("file exceeds the maximum allowed size")
	ErrUnsupportedContentType = errors.New("content type is not allowed")
	ErrNotFound               = errors.New("file not found")
)

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindObjectStore
	KindMetadataStore
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not found"
	case KindObjectStore:
		return "object store"
	case KindMetadataStore:
		return "metadata store"
	default:
		return "unknown"
	}
}

// Error is the outcome of a failed FileService or HealthService call.
type Error struct {
	Kind Kind
	Op   string
	ID   string
	Key  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Op + ": " + e.Kind.String()
	if e.ID != "" {
		msg += fmt.Sprintf(" (id %s)", e.ID)
	}
	if e.Key != "" {
		msg += fmt.Sprintf(" (key %s)", e.Key)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindUnknown
}

func validationError(op string, err error) error {
	return &Error{Kind: KindValidation, Op: op, Err: err}
}
