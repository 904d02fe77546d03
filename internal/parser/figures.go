package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"guru-api/internal/models"
)

// ParseFigureIndex reads an illustration index spreadsheet. The first sheet
// must carry image_url, description and page_number columns; the header row
// is skipped. Descriptions are expected to mention their figure id verbatim
// (e.g. "Figure 8.3 - Photosynthesis"), since lookup matches on that text.
func ParseFigureIndex(filePath string) ([]models.FigureEntry, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets in %s", filePath)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}

	var entries []models.FigureEntry
	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			continue
		}
		entry := models.FigureEntry{
			ImageURL:    strings.TrimSpace(row[0]),
			Description: strings.TrimSpace(row[1]),
		}
		if entry.ImageURL == "" || entry.Description == "" {
			continue
		}
		if len(row) > 2 {
			if page, err := strconv.Atoi(strings.TrimSpace(row[2])); err == nil {
				entry.PageNumber = page
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
