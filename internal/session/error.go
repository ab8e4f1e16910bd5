package session

import "errors"

var (
	ErrIllegalTransition = errors.New("illegal step transition")
	ErrStepIncomplete    = errors.New("current step is incomplete")
	ErrNotBookable       = errors.New("stay cannot be booked yet")
	ErrUnknownPolicy     = errors.New("unknown coupon policy")
)
