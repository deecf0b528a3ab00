package dal

import (
	"errors"
)

var (
	ErrEventAlreadyReserved   = errors.New("webhook event already reserved")
	ErrCheckoutSessionExists  = errors.New("checkout session already recorded")
	ErrCheckoutSessionMissing = errors.New("checkout session not found")
	ErrAddonRecordMissing     = errors.New("addon purchase record not found")
)
