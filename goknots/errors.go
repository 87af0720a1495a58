package goknots

import "errors"

// Errors
var (
	ErrParse            = errors.New("parse failed")
	ErrBadPDCode        = errors.New("bad PD code")
	ErrEmptyLink        = errors.New("link has no components")
	ErrMalformedCode    = errors.New("malformed signed gauss code")
	ErrMissingCrossing  = errors.New("missing crossing ID")
	ErrBadPartition     = errors.New("decomposition does not partition the components")
	ErrNoDisjointFactor = errors.New("invariant family has no disjoint union factor")
	ErrVarsMismatch     = errors.New("polynomial variables do not match")
	ErrUnknownVar       = errors.New("unknown polynomial variable")
	ErrNotMonomial      = errors.New("divisor is not a monomial")
	ErrUnmarshal        = errors.New("unmarshal failed")
	ErrBadCatalogParam  = errors.New("bad catalog param")
	ErrCatalogVersion   = errors.New("catalog version is incompatible")
	ErrCatalogReadOnly  = errors.New("catalog is in read-only mode")
	ErrCatalogClosed    = errors.New("catalog is closed")
)
