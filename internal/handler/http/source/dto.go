package source

import srcUC "newsreader/internal/usecase/source"

type DTO struct {
	ID          string `json:"id" example:"bbc-news"`
	Name        string `json:"name" example:"BBC News"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url" example:"http://www.bbc.co.uk/news"`
	Category    string `json:"category,omitempty" example:"general"`
	Language    string `json:"language,omitempty" example:"en"`
	Country     string `json:"country,omitempty" example:"gb"`
	Domain      string `json:"domain,omitempty" example:"www.bbc.co.uk"`
	LogoURL     string `json:"logo_url,omitempty"`
}

// ListResponse is the filtered catalog. Stale is set when an expired catalog was served.
type ListResponse struct {
	Data  []DTO `json:"data"`
	Total int   `json:"total"`
	Stale bool  `json:"stale"`
}

func toDTO(s srcUC.Source) DTO {
	return DTO{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		URL:         s.URL,
		Category:    s.Category,
		Language:    s.Language,
		Country:     s.Country,
		Domain:      s.Domain,
		LogoURL:     s.LogoURL,
	}
}
