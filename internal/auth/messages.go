package auth

import (
	"errors"

	"vidqueue/internal/credentials"
)

// User-facing login messages.
const (
	MessageStoreMissing     = "Database File Missing!"
	MessageStoreUnavailable = "Credential Store Unavailable!"
	MessageInvalid          = "Invalid Username or Password!"
	MessageWrongDevice      = "Access Denied! Wrong Device."
	MessageExpired          = "Subscription Expired! Contact Admin."
	MessageDateFormat       = "Date Format Error in Database!"
)

// Message maps an Authenticate error to the fixed message shown to the user.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, credentials.ErrMissing):
		return MessageStoreMissing
	case errors.Is(err, ErrStoreUnavailable):
		return MessageStoreUnavailable
	case errors.Is(err, ErrAccessDenied):
		return MessageWrongDevice
	case errors.Is(err, ErrSubscriptionExpired):
		return MessageExpired
	case errors.Is(err, ErrDateFormat):
		return MessageDateFormat
	default:
		return MessageInvalid
	}
}
