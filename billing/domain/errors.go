package domain

import (
	"errors"
)

var (
	ErrInvalidPlan       = errors.New("invalid plan key")
	ErrUserNotFound      = errors.New("user not found")
	ErrCustomerNotMapped = errors.New("stripe customer is not mapped to a user")
)
