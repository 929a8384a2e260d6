// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"sort"
	"strings"
)

// ValidationError reports missing or malformed input fields. It is recovered
// locally: the form stays editable and no store call is made.
type ValidationError struct {
	Fields map[string]string // field name -> message
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString("validation failed: ")
	for i, k := range keys {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(k)
		sb.WriteString(": ")
		sb.WriteString(e.Fields[k])
	}
	return sb.String()
}
