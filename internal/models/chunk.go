package models

// Chunk represents a parsed passage with metadata
type Chunk struct {
	Content    string
	PageNumber int
	ChunkID    int
}

// FigureEntry is one row of a figure-index spreadsheet.
type FigureEntry struct {
	ImageURL    string
	Description string
	PageNumber  int
}
