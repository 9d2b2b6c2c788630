package parser

import (
	"encoding/csv"
	"errors"
	"io"
	"net/http"
	"strings"

	"harvest-go-srv/internal/models"
)

// canonical header mapping
var headerAliases = map[string]string{
	"title":       "title",
	"track":       "title",
	"track_title": "title",
	"name":        "title",

	"artist":      "artist",
	"artist_name": "artist",
	"performer":   "artist",

	"album":       "album",
	"album_title": "album",

	"filename":        "filename",
	"file":            "filename",
	"source_filename": "filename",
}

func normalizeHeader(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ParseCSV handles multipart descriptor uploads from the Web API: one song
// per row, columns matched by alias. Rows with no usable field are skipped.
func ParseCSV(r *http.Request) ([]models.SongDescriptor, string, error) {
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	reader := csv.NewReader(file)

	// ---- Read header row ----
	rawHeaders, err := reader.Read()
	if err != nil {
		return nil, "", err
	}

	columnMap := make(map[int]string)

	for i, h := range rawHeaders {
		if canonical, ok := headerAliases[normalizeHeader(h)]; ok {
			columnMap[i] = canonical
		}
	}

	if len(columnMap) == 0 {
		return nil, "", errors.New("CSV has no recognizable columns")
	}

	var descriptors []models.SongDescriptor

	// ---- Read rows ----
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, "", err
		}

		var d models.SongDescriptor

		for i, v := range record {
			field, ok := columnMap[i]
			if !ok {
				continue
			}

			val := strings.TrimSpace(v)
			if val == "" {
				continue
			}

			switch field {
			case "title":
				d.Title = val
			case "artist":
				d.Artist = val
			case "album":
				d.Album = val
			case "filename":
				d.SourceFilename = val
			}
		}

		// Skip totally empty rows
		if d.Title == "" && d.Artist == "" && d.SourceFilename == "" {
			continue
		}

		descriptors = append(descriptors, d)
	}

	return descriptors, header.Filename, nil
}
