// Package article serves the headline feed, search, article detail and the
// cache maintenance routes.
package article

import (
	"time"

	"newsreader/internal/common/pagination"
	"newsreader/internal/domain/entity"
	"newsreader/internal/utils/datefmt"
)

// SourceDTO is the publisher reference embedded in an article.
type SourceDTO struct {
	ID   string `json:"id,omitempty" example:"bbc-news"`
	Name string `json:"name" example:"BBC News"`
}

// DTO represents the JSON structure for article data transfer.
type DTO struct {
	Title              string     `json:"title" example:"Markets rally on rate cut hopes"`
	Description        string     `json:"description,omitempty"`
	Content            string     `json:"content,omitempty"`
	Author             string     `json:"author,omitempty"`
	URL                string     `json:"url" example:"https://www.bbc.co.uk/news/business-1"`
	URLToImage         string     `json:"url_to_image,omitempty"`
	Source             SourceDTO  `json:"source"`
	PublishedAt        string     `json:"published_at" example:"2021-09-29T13:01:31Z"`
	PublishedAtDisplay string     `json:"published_at_display" example:"Sep 29, 2021 01:01 PM"`
	IsFavorite         bool       `json:"is_favorite"`
	FavoritedAt        *time.Time `json:"favorited_at,omitempty"`
}

// ToDTO converts a domain article.
func ToDTO(a *entity.NewsArticle) DTO {
	return DTO{
		Title:              a.Title,
		Description:        a.Description,
		Content:            a.Content,
		Author:             a.Author,
		URL:                a.URL,
		URLToImage:         a.URLToImage,
		Source:             SourceDTO{ID: a.Source.ID, Name: a.Source.Name},
		PublishedAt:        a.PublishedAt,
		PublishedAtDisplay: datefmt.FormatNewsDate(a.PublishedAt),
		IsFavorite:         a.IsFavorite,
		FavoritedAt:        a.FavoritedAt,
	}
}

// FromDTO converts a request body back into a domain article.
func FromDTO(d DTO) *entity.NewsArticle {
	return &entity.NewsArticle{
		Title:       d.Title,
		Description: d.Description,
		Content:     d.Content,
		Author:      d.Author,
		URL:         d.URL,
		URLToImage:  d.URLToImage,
		Source:      entity.Source{ID: d.Source.ID, Name: d.Source.Name},
		PublishedAt: d.PublishedAt,
	}
}

// HeadlinesResponse is a feed page plus the country it was built for.
// Stale is true when the news API failed and an older cache was served.
type HeadlinesResponse struct {
	Data       []DTO               `json:"data"`
	Pagination pagination.Metadata `json:"pagination"`
	Country    string              `json:"country"`
	Stale      bool                `json:"stale"`
}

// ContentDTO is the readable detail view of an article.
type ContentDTO struct {
	URL       string `json:"url"`
	Title     string `json:"title,omitempty"`
	Byline    string `json:"byline,omitempty"`
	SiteName  string `json:"site_name,omitempty"`
	Excerpt   string `json:"excerpt,omitempty"`
	Text      string `json:"text"`
	LeadImage string `json:"lead_image,omitempty"`
	Domain    string `json:"domain,omitempty"`
	LogoURL   string `json:"logo_url,omitempty"`
	Fallback  bool   `json:"fallback"`
}

// CountryDTO is a market the feed can be requested for.
type CountryDTO struct {
	Code string `json:"code" example:"gb"`
	Name string `json:"name" example:"United Kingdom"`
	Flag string `json:"flag" example:"🇬🇧"`
}
