package maceq

import "errors"

// Errors
var (
	ErrSeedShape      = errors.New("reference seed must be a scalar or a full per-type value")
	ErrBadCutoff      = errors.New("inner radius must be positive and smaller than the cutoff radius")
	ErrEmptyStructure = errors.New("structure contains no atoms")
	ErrBadPlaceholder = errors.New("placeholder distance 1/eps must lie beyond the cutoff radius")
)
