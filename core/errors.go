package core

import (
	"errors"
)

var (
	ErrPoolExhausted     = errors.New("pool is out of free slots")
	ErrInvalidHandle     = errors.New("handle is invalid or stale")
	ErrInvalidParameter  = errors.New("invalid parameter")
	ErrProtocolViolation = errors.New("frame/pass protocol violation")
)
