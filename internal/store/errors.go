package store

import "errors"

var (
	ErrServiceNotFound   = errors.New("service not found")
	ErrTicketNotFound    = errors.New("ticket not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidState      = errors.New("invalid ticket state")
	ErrNoSuccessor       = errors.New("no ticket behind in queue")
	ErrConflict          = errors.New("concurrent update conflict")
	ErrRelayCycle        = errors.New("relay chain would form a cycle")
	ErrDuplicateService  = errors.New("service name already exists")
)
