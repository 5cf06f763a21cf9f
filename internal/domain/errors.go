package domain

import "errors"

var (
	ErrMalformedResponse = errors.New("malformed backend response")
	ErrScanInFlight      = errors.New("scan already in flight")
	ErrInsufficientData  = errors.New("insufficient data for stake allocation")
	ErrNoArbitrage       = errors.New("no arbitrage exists")
	ErrNotFound          = errors.New("not found")
)
