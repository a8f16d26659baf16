package core

import (
	"errors"
)

var (
	// ErrInvalidDrawState is raised when a DrawState is built from arguments
	// the resource layer should never have handed out.
	ErrInvalidDrawState = errors.New("invalid draw state")
	// ErrDrawStateMismatch is raised when an instance reaches a batch bound to another state.
	ErrDrawStateMismatch = errors.New("draw state does not match batch")
	// ErrInstanceNotRegistered is returned when removing an instance a scene never saw.
	ErrInstanceNotRegistered = errors.New("draw instance not registered")
	// ErrTargetNotAttached is returned when detaching a render target that is not attached.
	ErrTargetNotAttached = errors.New("render target not attached")
	ErrTargetExists      = errors.New("render target already exists")
	ErrUnknownResource   = errors.New("unknown resource")
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrNoFreeSlot        = errors.New("no free slot")
	ErrUnknown           = errors.New("unknown")
)
