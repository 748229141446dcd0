package favorite

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"newsreader/internal/domain/entity"
)

// Format is an export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" and "yml" in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// Record is the exported shape of a favorite.
type Record struct {
	Title       string     `json:"title" yaml:"title"`
	URL         string     `json:"url" yaml:"url"`
	Source      string     `json:"source,omitempty" yaml:"source,omitempty"`
	Author      string     `json:"author,omitempty" yaml:"author,omitempty"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	PublishedAt string     `json:"published_at,omitempty" yaml:"published_at,omitempty"`
	FavoritedAt *time.Time `json:"favorited_at,omitempty" yaml:"favorited_at,omitempty"`
}

func toRecord(a *entity.NewsArticle) Record {
	return Record{
		Title:       a.Title,
		URL:         a.URL,
		Source:      a.Source.Name,
		Author:      a.Author,
		Description: a.Description,
		PublishedAt: a.PublishedAt,
		FavoritedAt: a.FavoritedAt,
	}
}

// Export writes every favorite to w in format.
func (s *Service) Export(ctx context.Context, w io.Writer, format Format) error {
	favs, err := s.List(ctx)
	if err != nil {
		return err
	}
	records := make([]Record, 0, len(favs))
	for _, a := range favs {
		records = append(records, toRecord(a))
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("export json: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("export yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("export yaml: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return nil
}
