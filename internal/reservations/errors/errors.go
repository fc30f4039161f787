package errors

import "errors"

var (
	ErrNotFound = errors.New("reservation not found")

	ErrInvalidID = errors.New("invalid ID format")

	ErrStableNotFound = errors.New("stable not found")

	ErrHorseNotFound = errors.New("horse not found")

	ErrUserNotFound = errors.New("user not found")

	ErrPromoNotFound = errors.New("promo code not found")
)
