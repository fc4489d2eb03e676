package service

import "errors"

// ErrUnknownDrug is returned when a financial impact derivation references a
// drug id absent from the catalog.
var ErrUnknownDrug = errors.New("drug not found in catalog")

// ErrInvalidDuration guards the impact derivation input.
var ErrInvalidDuration = errors.New("treatment duration must be at least one month")
