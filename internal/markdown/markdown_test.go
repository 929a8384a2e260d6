// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderBold(t *testing.T) {
	out, err := Render("**bold**")
	require.NoError(t, err)
	assert.Contains(t, string(out), "<strong>bold</strong>")
}

func TestRenderItalics(t *testing.T) {
	out, err := Render("*emphasis*")
	require.NoError(t, err)
	assert.Contains(t, string(out), "<em>emphasis</em>")
}

func TestRenderHeaders(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"h1", "# Title", "<h1>Title</h1>"},
		{"h2", "## Section", "<h2>Section</h2>"},
		{"h3", "### Detail", "<h3>Detail</h3>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Render(tt.source)
			require.NoError(t, err)
			assert.Contains(t, string(out), tt.want)
		})
	}
}

func TestRenderListSingleContainer(t *testing.T) {
	out, err := Render("- a\n- b")
	require.NoError(t, err)

	s := string(out)
	assert.Equal(t, 1, strings.Count(s, "<ul>"), "adjacent items share one list container")
	assert.Equal(t, 2, strings.Count(s, "<li>"))
	assert.Contains(t, s, "a")
	assert.Contains(t, s, "b")
}

func TestRenderInlineCode(t *testing.T) {
	out, err := Render("run `occasio -h` first")
	require.NoError(t, err)
	assert.Contains(t, string(out), "<code>occasio -h</code>")
}

func TestRenderLink(t *testing.T) {
	out, err := Render("[site](https://example.com)")
	require.NoError(t, err)
	s := string(out)
	assert.Contains(t, s, `href="https://example.com"`)
	assert.Contains(t, s, ">site</a>")
}

func TestRenderLineBreaks(t *testing.T) {
	out, err := Render("first\nsecond")
	require.NoError(t, err)
	assert.Contains(t, string(out), "<br")
}

func TestRenderParagraphBreaks(t *testing.T) {
	out, err := Render("first\n\nsecond")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(out), "<p>"))
}

func TestRenderEscapesEmbeddedMarkup(t *testing.T) {
	out, err := Render("hello <script>alert(1)</script>")
	require.NoError(t, err)

	s := string(out)
	assert.NotContains(t, s, "<script>")
	assert.Contains(t, s, "hello")
}

func TestRenderDeterministic(t *testing.T) {
	const source = "# Plan\n\n- **step one**\n- step two"
	first, err := Render(source)
	require.NoError(t, err)
	second, err := Render(source)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestMustRenderFallback(t *testing.T) {
	// MustRender never panics and always returns something displayable.
	out := MustRender("plain text")
	assert.Contains(t, string(out), "plain text")
}
