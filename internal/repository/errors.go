package repository

import "errors"

var ErrSlotBlocked = errors.New("the provider is unavailable at this time")
