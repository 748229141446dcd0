package pagination

type Response[T any] struct {
	Data       []T      `json:"data"`       // Items of the current page
	Pagination Metadata `json:"pagination"` // Page position and neighbour keys
}

// NewResponse converts a keyed page into its JSON shape, mapping each item with conv.
func NewResponse[S, T any](page Page[S], params Params, conv func(S) T) Response[T] {
	data := make([]T, 0, len(page.Data))
	for _, item := range page.Data {
		data = append(data, conv(item))
	}
	return Response[T]{
		Data: data,
		Pagination: Metadata{
			Page:     params.Page,
			Limit:    params.Limit,
			PrevPage: page.PrevKey,
			NextPage: page.NextKey,
		},
	}
}
