package service

import (
	"errors"
)

var (
	ErrInvalidSignature    = errors.New("invalid webhook signature")
	ErrMissingCustomer     = errors.New("user has no stripe customer")
	ErrSamePlan            = errors.New("user is already on the requested plan")
	ErrSubscriptionMissing = errors.New("no subscription found to change")
)
