package internal

import "errors"

var (
	ErrLoginIsAlreadyTaken = errors.New("login is already taken")
	ErrInvalidCredentials  = errors.New("invalid credentials")

	ErrNoRecords          = errors.New("no records")
	ErrInvalidOrderNumber = errors.New("order number is invalid")
	ErrForbidden          = errors.New("order belongs to another user")
	ErrNotCancellable     = errors.New("order can no longer be cancelled")
	ErrOrderNumberTaken   = errors.New("order number is already taken")

	ErrTooManyRequests = errors.New("too many requests")
	ErrRefundRejected  = errors.New("refund rejected by payment system")
)
