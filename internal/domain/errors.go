package domain

import "errors"

var (
	// ErrNotFoundOrForbidden is returned when the caller acts on a match or
	// conversation that does not exist or that they do not participate in.
	// The two cases are deliberately indistinguishable.
	ErrNotFoundOrForbidden = errors.New("not found or forbidden")

	ErrUserNotFound         = errors.New("user not found")
	ErrMatchNotFound        = errors.New("match not found")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrMessageNotFound      = errors.New("message not found")

	ErrCannotLikeSelf = errors.New("cannot like yourself")
	ErrEmptyContent   = errors.New("message content is required")
	ErrContentTooLong = errors.New("message content is too long")
	ErrInvalidCursor  = errors.New("invalid cursor")
	ErrInvalidToken   = errors.New("invalid token")

	// ErrConflict signals that an insert lost a uniqueness race. Use cases
	// recover from it by reading back the winning row.
	ErrConflict = errors.New("conflict")
)
