package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chapterforge/chapterforge"
)

// jsonChapter mirrors internal/chapterjson's Chapter shape so a read's
// JSON output can be fed straight back into MuxFromJSON as a chapter
// file, modulo the image field pointing at an exported file instead of
// a source-relative path.
type jsonChapter struct {
	StartMS int64  `json:"start_ms"`
	Title   string `json:"title"`
	Image   string `json:"image,omitempty"`
	URL     string `json:"url,omitempty"`
	URLText string `json:"url_text,omitempty"`
}

type jsonDocument struct {
	Title    string        `json:"title,omitempty"`
	Artist   string        `json:"artist,omitempty"`
	Album    string        `json:"album,omitempty"`
	Genre    string        `json:"genre,omitempty"`
	Year     string        `json:"year,omitempty"`
	Comment  string        `json:"comment,omitempty"`
	Chapters []jsonChapter `json:"chapters"`
}

func runRead(path, exportDir string) error {
	result, err := chapterforge.ReadM4A(path)
	if err != nil {
		return fmt.Errorf("failed to read m4a: %w", err)
	}

	if exportDir != "" {
		if err := os.MkdirAll(exportDir, 0o755); err != nil {
			return fmt.Errorf("failed to export jpegs: %w", err)
		}
	}

	doc := jsonDocument{
		Title:    result.Metadata.Title,
		Artist:   result.Metadata.Artist,
		Album:    result.Metadata.Album,
		Genre:    result.Metadata.Genre,
		Year:     result.Metadata.Year,
		Comment:  result.Metadata.Comment,
		Chapters: make([]jsonChapter, len(result.Titles)),
	}

	urlsByStart := make(map[int64]chapterforge.ChapterTextSample, len(result.Urls))
	for _, u := range result.Urls {
		urlsByStart[u.StartMS] = u
	}
	imagesByStart := make(map[int64]chapterforge.ChapterImageSample, len(result.Images))
	for _, im := range result.Images {
		imagesByStart[im.StartMS] = im
	}

	for i, t := range result.Titles {
		ch := jsonChapter{StartMS: t.StartMS, Title: t.Text}
		if u, ok := urlsByStart[t.StartMS]; ok {
			ch.URL = u.Href
			ch.URLText = u.Text
		}
		if exportDir != "" {
			if im, ok := imagesByStart[t.StartMS]; ok {
				imagePath := filepath.Join(exportDir, fmt.Sprintf("chapter-%03d.jpg", i))
				if err := os.WriteFile(imagePath, im.Data, 0o644); err != nil {
					return fmt.Errorf("failed to export jpegs: %w", err)
				}
				ch.Image = imagePath
			}
		}
		doc.Chapters[i] = ch
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode read result: %w", err)
	}
	return nil
}
