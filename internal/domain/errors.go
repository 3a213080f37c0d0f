/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

package domain

import (
	"errors"
	"fmt"
)

// ErrAuthChallenge is returned when the backend rejects a request for missing or expired credentials.
var ErrAuthChallenge = errors.New("authentication required")

// DecodeError reports an upload that could not be interpreted as an image.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("decode image: %v", e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }

// SaveError reports a rejected design package or a failed request.
// HTTPStatus is zero when the request never got a response.
type SaveError struct {
	HTTPStatus int
	Err        error
}

func (e *SaveError) Error() string {
	if e.HTTPStatus != 0 {
		return fmt.Sprintf("save design: status %d: %v", e.HTTPStatus, e.Err)
	}
	return fmt.Sprintf("save design: %v", e.Err)
}
func (e *SaveError) Unwrap() error { return e.Err }
