package apperr

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Kind tags an engine failure so handlers can map it to a status code
// without matching on message text.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindInvalidArgument
	KindConflict
	KindUnauthorized
)

type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func NotFound(msg string) error        { return &Error{Kind: KindNotFound, Msg: msg} }
func InvalidArgument(msg string) error { return &Error{Kind: KindInvalidArgument, Msg: msg} }
func Conflict(msg string) error        { return &Error{Kind: KindConflict, Msg: msg} }
func Unauthorized(msg string) error    { return &Error{Kind: KindUnauthorized, Msg: msg} }

// KindOf returns the tagged kind, or KindUnknown for plain errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// ToFiber maps an engine error onto a fiber error with the right status.
func ToFiber(err error) error {
	switch KindOf(err) {
	case KindNotFound:
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case KindInvalidArgument:
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case KindConflict:
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case KindUnauthorized:
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
