package pagination

type Metadata struct {
	Page     int  `json:"page"`      // Current page number (1-based)
	Limit    int  `json:"limit"`     // Items per page
	PrevPage *int `json:"prev_page"` // null on the first page
	NextPage *int `json:"next_page"` // null once the end is reached
}
