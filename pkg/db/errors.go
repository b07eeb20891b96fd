package db

import "errors"

// ErrNotFound is returned by Get* operations when the requested record does
// not exist. Implementations translate their driver's no-rows error into it.
var ErrNotFound = errors.New("record not found")
