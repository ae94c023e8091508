package domain

import (
	"errors"
	"fmt"
)

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

// ValidationError is a malformed request. It never reaches the store or the ledger.
type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

// CredentialError means the signed credential does not prove control of the claimed account.
type CredentialError struct {
	Reason string
	Err    error
}

func (e CredentialError) Error() string {
	if e.Reason == "" {
		return "invalid credential"
	}
	return "invalid credential: " + e.Reason
}

func (e CredentialError) Unwrap() error { return e.Err }

// DependencyError is an external service (ledger, recognizer, registry) that could not answer.
type DependencyError struct {
	Service string
	Err     error
}

func (e DependencyError) Error() string {
	if e.Err == nil {
		return e.Service + " unavailable"
	}
	return fmt.Sprintf("%s unavailable: %v", e.Service, e.Err)
}

func (e DependencyError) Unwrap() error { return e.Err }

// UnauthorizedError means the requester does not own every slot it tries to mutate.
type UnauthorizedError struct {
	Msg string
}

func (e UnauthorizedError) Error() string {
	if e.Msg == "" {
		return "unauthorized"
	}
	return e.Msg
}

// UnauthenticatedError is a missing, expired or wrong login.
type UnauthenticatedError struct {
	Msg string
}

func (e UnauthenticatedError) Error() string {
	if e.Msg == "" {
		return "authentication required"
	}
	return e.Msg
}

// ForbiddenError means the authenticated caller may not act for the identity in the request.
type ForbiddenError struct {
	Msg string
}

func (e ForbiddenError) Error() string {
	if e.Msg == "" {
		return "forbidden"
	}
	return e.Msg
}

type PersistenceError struct {
	Op  string
	Err error
}

func (e PersistenceError) Error() string {
	if e.Err == nil {
		return e.Op + " failed"
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e PersistenceError) Unwrap() error { return e.Err }

// TimeoutError is an external call that exceeded its deadline.
type TimeoutError struct {
	Service string
	Err     error
}

func (e TimeoutError) Error() string {
	return e.Service + " timed out"
}

func (e TimeoutError) Unwrap() error { return e.Err }

// TransferError is a ledger transfer that was rejected or never reached the ledger.
type TransferError struct {
	Err error
}

func (e TransferError) Error() string {
	if e.Err == nil {
		return "transfer failed"
	}
	return "transfer failed: " + e.Err.Error()
}

func (e TransferError) Unwrap() error { return e.Err }

// ImageError means the uploaded image could not produce a plate reading.
type ImageError struct {
	Msg string
	Err error
}

func (e ImageError) Error() string {
	if e.Msg == "" {
		return "image is bad"
	}
	return e.Msg
}

func (e ImageError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}

func IsCredential(err error) bool {
	var target CredentialError
	return errors.As(err, &target)
}

func IsDependency(err error) bool {
	var target DependencyError
	return errors.As(err, &target)
}

func IsUnauthorized(err error) bool {
	var target UnauthorizedError
	return errors.As(err, &target)
}

func IsUnauthenticated(err error) bool {
	var target UnauthenticatedError
	return errors.As(err, &target)
}

func IsForbidden(err error) bool {
	var target ForbiddenError
	return errors.As(err, &target)
}

func IsPersistence(err error) bool {
	var target PersistenceError
	return errors.As(err, &target)
}

func IsTimeout(err error) bool {
	var target TimeoutError
	return errors.As(err, &target)
}

func IsTransfer(err error) bool {
	var target TransferError
	return errors.As(err, &target)
}

func IsImage(err error) bool {
	var target ImageError
	return errors.As(err, &target)
}
