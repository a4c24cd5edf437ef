package neogm

import "errors"

// ErrNotFound is a sentinel error returned by lookups by id or primary key when no
// record matching the criteria is found in the database.
var ErrNotFound = errors.New("record not found")

// Validation errors returned by the Relations and Nodes facades before any query is
// built or executed.
var (
	ErrInvalidNodeID       = errors.New("node ids must be integers")
	ErrInvalidRelationID   = errors.New("relation id must be an integer")
	ErrMissingRelationType = errors.New("relation type must be specified")
	ErrInvalidFilter       = errors.New("filter must be a *Where")
	ErrMissingLabel        = errors.New("node label must be specified")
	ErrMissingProperty     = errors.New("property name must be specified")
	ErrNilQuery            = errors.New("relation query must not be nil")
)

// Construction errors returned by NewWhere.
var (
	ErrEmptyField       = errors.New("where: field name must not be empty")
	ErrUnknownOperator  = errors.New("where: unknown operator")
	ErrUnsupportedValue = errors.New("where: unsupported value")
)
