package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInitializedMarkdown(t *testing.T, width int) *MarkdownService {
	t.Helper()
	service := NewMarkdownService(width)
	require.NoError(t, service.Initialize())
	return service
}

func TestMarkdownService_Name(t *testing.T) {
	assert.Equal(t, "markdown", NewMarkdownService(0).Name())
}

func TestMarkdownService_NotInitialized(t *testing.T) {
	_, err := NewMarkdownService(0).RenderWithTheme("# Title", "dark")
	assert.ErrorIs(t, err, ErrServiceNotInitialized)
}

func TestMarkdownService_RenderWithStyle(t *testing.T) {
	service := newInitializedMarkdown(t, 0)

	rendered, err := service.RenderWithStyle("# Xarelto\n\nAn **anticoagulant**.", "notty")
	require.NoError(t, err)
	assert.Contains(t, rendered, "Xarelto")
	assert.Contains(t, rendered, "anticoagulant")

	_, err = service.RenderWithStyle("   ", "notty")
	assert.Error(t, err)
}

func TestMarkdownService_UnknownStyleFallsBack(t *testing.T) {
	service := newInitializedMarkdown(t, 0)

	rendered, err := service.RenderWithStyle("plain words", "no-such-style")
	require.NoError(t, err)
	assert.Contains(t, rendered, "plain words")
}

func TestMarkdownService_RenderWithTheme(t *testing.T) {
	service := newInitializedMarkdown(t, 0)

	for _, theme := range []string{"plain", "Dark", "light", "default", "unknown"} {
		rendered, err := service.RenderWithTheme("- one\n- two", theme)
		require.NoError(t, err, theme)
		assert.Contains(t, rendered, "one", theme)
		assert.Contains(t, rendered, "two", theme)
	}
}

func TestMarkdownService_WordWrap(t *testing.T) {
	service := newInitializedMarkdown(t, 30)
	paragraph := strings.Repeat("warfarin ", 12)

	rendered, err := service.RenderWithStyle(paragraph, "notty")
	require.NoError(t, err)
	assert.Greater(t, len(strings.Split(strings.TrimSpace(rendered), "\n")), 2, "a long paragraph wraps")
}
