package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestChunkContent(t *testing.T) {
	tests := []struct {
		name         string
		content      string
		maxChars     int
		overlapChars int
		wantChunks   int
	}{
		{"empty", "", 100, 10, 0},
		{"fits in one chunk", "short passage", 100, 10, 1},
		{"zero max", "anything", 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := chunkContent(tt.content, tt.maxChars, tt.overlapChars)
			assert.Len(t, got, tt.wantChunks)
		})
	}
}

func TestChunkContentSplitsWithOverlap(t *testing.T) {
	content := strings.Repeat("leaf word ", 50) // 500 chars
	chunks := chunkContent(content, 100, 20)

	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 100)
		assert.NotEmpty(t, strings.TrimSpace(chunk))
	}
}

func TestParseUnsupportedFormat(t *testing.T) {
	_, err := Parse("notes.epub", 1000, 500)
	assert.ErrorContains(t, err, "unsupported file format")
}

func TestParseTextFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("Photosynthesis makes food in the leaf."), 0o644))

	chunks, err := Parse(path, 1000, 500)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0].Content, "Photosynthesis makes food in the leaf.")
	assert.Equal(t, 1, chunks[0].PageNumber)
}

func TestParseFigureIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "figures.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"image_url", "description", "page_number"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"https://cdn/fig32.png", "Figure 3.2 - Leaf cross-section", "40"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"", "row without a url is skipped", "41"}))
	require.NoError(t, f.SetSheetRow(sheet, "A4", &[]any{"https://cdn/fig89.png", "Figure 8.9 - Stomata", ""}))
	require.NoError(t, f.SaveAs(path))

	entries, err := ParseFigureIndex(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "https://cdn/fig32.png", entries[0].ImageURL)
	assert.Equal(t, "Figure 3.2 - Leaf cross-section", entries[0].Description)
	assert.Equal(t, 40, entries[0].PageNumber)
	assert.Equal(t, 0, entries[1].PageNumber)
}

func TestParseFigureIndexMissingFile(t *testing.T) {
	_, err := ParseFigureIndex(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.Error(t, err)
}
