package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInternal        = errors.New("internal error")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrInvalidToken    = errors.New("invalid token")
	ErrForbidden       = errors.New("forbidden")
)

// KindError pairs a sentinel kind with the message that is safe to show a client.
type KindError struct {
	Kind error
	Msg  string
}

func (e *KindError) Error() string { return e.Msg }

func (e *KindError) Unwrap() error { return e.Kind }

func Unauthorized(msg string) error {
	return &KindError{Kind: ErrUnauthorized, Msg: msg}
}

func Conflict(msg string) error {
	return &KindError{Kind: ErrConflict, Msg: msg}
}

func NotFound(msg string) error {
	return &KindError{Kind: ErrNotFound, Msg: msg}
}

func Forbidden(msg string) error {
	return &KindError{Kind: ErrForbidden, Msg: msg}
}

func NewInvalidArgument(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, msg)
}

func WrapInternal(err error, context string) error {
	return fmt.Errorf("%w: %s: %v", ErrInternal, context, err)
}

// PublicMessage returns the client-facing text of err. Errors built with the
// kind constructors expose their own message, everything else the sentinel's.
func PublicMessage(err error) string {
	var ke *KindError
	if errors.As(err, &ke) {
		return ke.Msg
	}
	if IsInvalidArgument(err) {
		return err.Error()
	}
	return ""
}

func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

func IsInternal(err error) bool {
	return errors.Is(err, ErrInternal)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrUnauthenticated)
}

func IsInvalidToken(err error) bool {
	return errors.Is(err, ErrInvalidToken)
}

func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}
