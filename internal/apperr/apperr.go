// SPDX-License-Identifier: AGPL-3.0-or-later
// Accord - a chat-and-voice platform server
// Copyright (C) 2026 The Accord Authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package apperr defines the closed error sum shared by every core
// subsystem and its translation into the HTTP error envelope.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is one of the exhaustive error code tags in the external interface.
type Code string

const (
	CodeInternal        Code = "internal_error"
	CodeInvalidRequest  Code = "invalid_request"
	CodeNotFound        Code = "not_found"
	CodeUnauthorized    Code = "unauthorized"
	CodeForbidden       Code = "forbidden"
	CodeAlreadyExists   Code = "already_exists"
	CodePayloadTooLarge Code = "payload_too_large"
	CodeRateLimited     Code = "rate_limited"
)

var statusByCode = map[Code]int{
	CodeInternal:        http.StatusInternalServerError,
	CodeInvalidRequest:  http.StatusBadRequest,
	CodeNotFound:        http.StatusNotFound,
	CodeUnauthorized:    http.StatusUnauthorized,
	CodeForbidden:       http.StatusForbidden,
	CodeAlreadyExists:   http.StatusConflict,
	CodePayloadTooLarge: http.StatusRequestEntityTooLarge,
	CodeRateLimited:     http.StatusTooManyRequests,
}

// Error is the closed error sum: Database and Internal both surface as
// CodeInternal to callers, distinguished only for logging.
type Error struct {
	Code       Code
	Message    string
	Details    any
	RetryAfter int // seconds; only meaningful for CodeRateLimited
	cause      error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Status returns the HTTP status this error maps to.
func (e *Error) Status() int {
	if s, ok := statusByCode[e.Code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

func newErr(code Code, msg string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(msg, args...)}
}

func Internal(cause error) *Error {
	return &Error{Code: CodeInternal, Message: "internal error", cause: cause}
}

func Database(cause error) *Error {
	return &Error{Code: CodeInternal, Message: "database error", cause: cause}
}

func BadRequest(msg string, args ...any) *Error  { return newErr(CodeInvalidRequest, msg, args...) }
func NotFound(msg string, args ...any) *Error    { return newErr(CodeNotFound, msg, args...) }
func Unauthorized(msg string, args ...any) *Error { return newErr(CodeUnauthorized, msg, args...) }
func Forbidden(msg string, args ...any) *Error   { return newErr(CodeForbidden, msg, args...) }
func Conflict(msg string, args ...any) *Error    { return newErr(CodeAlreadyExists, msg, args...) }
func PayloadTooLarge(msg string, args ...any) *Error {
	return newErr(CodePayloadTooLarge, msg, args...)
}

func RateLimited(retryAfterSeconds int) *Error {
	return &Error{
		Code:       CodeRateLimited,
		Message:    "rate limit exceeded",
		RetryAfter: retryAfterSeconds,
	}
}

// As extracts an *Error from err, wrapping unknown errors as Internal.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}
