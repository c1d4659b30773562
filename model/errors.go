package model

import "errors"

// Failure kinds returned by the contract. Callers match them with errors.Is.
var (
	ErrUnresolvedPrincipal   = errors.New("a participant/certificate mapping does not exist")
	ErrInvalidFieldReference = errors.New("invalid field reference")
	ErrAlreadyFulfilled      = errors.New("request already fulfilled")
	ErrDuplicateID           = errors.New("duplicate id")
	ErrPersistence           = errors.New("persistence error")
	ErrNotFound              = errors.New("record not found")
	ErrMemberNotFound        = errors.New("member not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrSelfReference         = errors.New("member cannot reference itself")
	ErrInvalidArgument       = errors.New("invalid argument")
)
