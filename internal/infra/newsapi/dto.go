package newsapi

import (
	"strings"

	"newsreader/internal/domain/entity"
	"newsreader/internal/utils/text"
)

// removedTitle marks articles the publisher withdrew; the API keeps them as placeholders.
const removedTitle = "[Removed]"

type sourceRefDTO struct {
	ID   *string `json:"id"`
	Name string  `json:"name"`
}

type articleDTO struct {
	Source      sourceRefDTO `json:"source"`
	Author      *string      `json:"author"`
	Title       string       `json:"title"`
	Description *string      `json:"description"`
	URL         string       `json:"url"`
	URLToImage  *string      `json:"urlToImage"`
	PublishedAt string       `json:"publishedAt"`
	Content     *string      `json:"content"`
}

// envelope covers both the success body and the error body.
type envelope struct {
	Status       string       `json:"status"`
	TotalResults int          `json:"totalResults"`
	Articles     []articleDTO `json:"articles"`
	Sources      []sourceDTO  `json:"sources"`
	Code         string       `json:"code"`
	Message      string       `json:"message"`
}

type sourceDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Category    string `json:"category"`
	Language    string `json:"language"`
	Country     string `json:"country"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (d articleDTO) toEntity() *entity.NewsArticle {
	return &entity.NewsArticle{
		Author:      strings.TrimSpace(deref(d.Author)),
		Content:     text.TrimContentMarker(text.StripHTML(deref(d.Content))),
		Description: text.StripHTML(deref(d.Description)),
		PublishedAt: d.PublishedAt,
		Source:      entity.Source{ID: deref(d.Source.ID), Name: d.Source.Name},
		Title:       text.StripHTML(d.Title),
		URL:         strings.TrimSpace(d.URL),
		URLToImage:  strings.TrimSpace(deref(d.URLToImage)),
	}
}

func (e *envelope) toResponse() *entity.NewsResponse {
	out := &entity.NewsResponse{
		Status:       e.Status,
		TotalResults: e.TotalResults,
		Articles:     make([]*entity.NewsArticle, 0, len(e.Articles)),
	}
	for _, d := range e.Articles {
		if d.Title == removedTitle || strings.TrimSpace(d.URL) == "" {
			continue
		}
		out.Articles = append(out.Articles, d.toEntity())
	}
	return out
}

func (d sourceDTO) toEntity() *entity.NewsSource {
	return &entity.NewsSource{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		URL:         d.URL,
		Category:    d.Category,
		Language:    d.Language,
		Country:     d.Country,
	}
}
