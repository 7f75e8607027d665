// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation provides input validation utilities for security-critical operations.
//
// This package contains validators for user-provided identifiers that end up
// in storage keys and log lines. Using these validators prevents key
// injection (a recipient ID containing the key separator could shadow or
// collide with another recipient's journal entries) and log forging.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// recipientIDPattern matches valid recipient identifiers.
// Allows: letters, digits, dots, hyphens, underscores (CASE-001, hh_42.b)
// Max length: 64 characters
var recipientIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._\-]{0,63}$`)

// runIDPattern matches valid run identifiers. Run IDs are issued by the
// allocator as UUIDs, but feedback callers echo them back, so the echoed
// value is gated before it becomes a storage key.
var runIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9\-]{0,63}$`)

// ValidateRecipientID validates a recipient identifier before it is used
// in a journal key.
//
// Valid identifiers:
//   - 1-64 characters
//   - Letters A-Z a-z and digits 0-9
//   - Dots (.), underscores (_), hyphens (-) after the first character
//
// Returns an error if the identifier is invalid.
//
// Example:
//
//	if err := validation.ValidateRecipientID(id); err != nil {
//	    return nil, fmt.Errorf("invalid recipient: %w", err)
//	}
//	// Safe to use in a journal key
func ValidateRecipientID(id string) error {
	if id == "" {
		return fmt.Errorf("recipient id cannot be empty")
	}

	if !recipientIDPattern.MatchString(id) {
		return fmt.Errorf("invalid recipient id format: %q (must be 1-64 alphanumeric chars, dots, underscores, or hyphens)", id)
	}

	return nil
}

// ValidateRunID validates a run identifier echoed back by a caller.
// Returns an error if the identifier is invalid.
func ValidateRunID(id string) error {
	if id == "" {
		return fmt.Errorf("run id cannot be empty")
	}

	if !runIDPattern.MatchString(id) {
		return fmt.Errorf("invalid run id format: %q (must be 1-64 alphanumeric chars or hyphens)", id)
	}

	return nil
}

// SanitizeRecipientID normalizes and validates a recipient identifier.
// Returns the trimmed identifier if valid, or an error if invalid.
func SanitizeRecipientID(id string) (string, error) {
	normalized := strings.TrimSpace(id)
	if err := ValidateRecipientID(normalized); err != nil {
		return "", err
	}
	return normalized, nil
}
