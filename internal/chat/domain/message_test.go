package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreviewContent_ShortContentUnmodified(t *testing.T) {
	content := "Hello, is this still available?"
	assert.LessOrEqual(t, len(content), PreviewLimit)
	assert.Equal(t, content, PreviewContent(content))
}

func TestPreviewContent_ExactlyFiftyNoEllipsis(t *testing.T) {
	content := strings.Repeat("a", 50)
	assert.Equal(t, content, PreviewContent(content))
}

func TestPreviewContent_FiftyFiveTruncated(t *testing.T) {
	content := strings.Repeat("b", 55)
	preview := PreviewContent(content)
	assert.Equal(t, content[:50]+"...", preview)
	assert.Len(t, preview, 53)
}

func TestPreviewContent_FiftyOneTruncated(t *testing.T) {
	content := strings.Repeat("c", 51)
	assert.Equal(t, content[:50]+"...", PreviewContent(content))
}

func TestPreviewContent_Empty(t *testing.T) {
	assert.Equal(t, "", PreviewContent(""))
}
