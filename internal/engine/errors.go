// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import "errors"

// =============================================================================
// ERROR TYPES
// =============================================================================

// Kind categorizes engine errors for handling.
type Kind int

const (
	KindUnknown Kind = iota
	KindModelLoad
	KindGeneration
	KindUnavailable
)

// String returns the kind name used in log fields.
func (k Kind) String() string {
	switch k {
	case KindModelLoad:
		return "model_load"
	case KindGeneration:
		return "generation"
	case KindUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Error is a failure reported by an engine.
type Error struct {
	Kind    Kind
	Model   string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Model != "" {
		msg += " (" + e.Model + ")"
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error of the same kind, so the sentinels below work with
// errors.Is regardless of model or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinel errors for easy checking.
var (
	ErrModelLoad   = &Error{Kind: KindModelLoad, Message: "model load failed"}
	ErrGeneration  = &Error{Kind: KindGeneration, Message: "generation failed"}
	ErrUnavailable = &Error{Kind: KindUnavailable, Message: "engine unavailable"}
)

// LoadError wraps cause as a model load failure for model.
func LoadError(model string, cause error) *Error {
	return &Error{Kind: KindModelLoad, Model: model, Message: "model load failed", Cause: cause}
}

// GenerationError wraps cause as a generation failure for model.
func GenerationError(model string, cause error) *Error {
	return &Error{Kind: KindGeneration, Model: model, Message: "generation failed", Cause: cause}
}

// IsModelLoad reports whether err is a model load failure.
func IsModelLoad(err error) bool {
	return errors.Is(err, ErrModelLoad)
}

// IsGeneration reports whether err is a generation failure.
func IsGeneration(err error) bool {
	return errors.Is(err, ErrGeneration)
}

// IsUnavailable reports whether err means the engine cannot serve at all.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
