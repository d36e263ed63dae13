package gateway

import (
	"errors"
)

var (
	ErrUnknownAsset         = errors.New("unknown asset")
	ErrInsufficientReserves = errors.New("insufficient reserves")
)
