// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package markdown converts model-generated markdown to sanitized HTML
// fragments for display. Raw HTML embedded in the input is escaped by the
// converter and anything that survives is stripped by the sanitizer, so the
// output is safe even if the upstream model misbehaves.
package markdown

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"
)

// converter renders the markdown subset used by generated content: headers,
// bold, italics, unordered lists, inline code, links. Single newlines become
// line breaks, matching how the generation prompts format their output.
var converter = goldmark.New(
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
	),
)

var sanitizer = bluemonday.UGCPolicy()

// Render converts markdown text to a sanitized HTML fragment. It is pure and
// deterministic: the same input always yields the same fragment.
func Render(source string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := converter.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return template.HTML(sanitizer.SanitizeBytes(buf.Bytes())), nil //nolint:gosec // sanitized above
}

// MustRender is Render for template pipelines where the conversion error
// cannot be surfaced; it falls back to the escaped source text.
func MustRender(source string) template.HTML {
	out, err := Render(source)
	if err != nil {
		return template.HTML(template.HTMLEscapeString(source)) //nolint:gosec // escaped
	}
	return out
}
