package pagination

// Page is one page of a keyed pager. Keys are page numbers; a nil key means
// there is nothing in that direction.
type Page[T any] struct {
	Data    []T
	PrevKey *int
	NextKey *int
}

// NewPage builds a page for page number page. hasNext decides NextKey.
func NewPage[T any](data []T, page int, hasNext bool) Page[T] {
	p := Page[T]{Data: data}
	if page > 1 {
		prev := page - 1
		p.PrevKey = &prev
	}
	if hasNext {
		next := page + 1
		p.NextKey = &next
	}
	return p
}

// Empty returns a terminal page with no data and no keys beyond page-1.
func Empty[T any](page int) Page[T] {
	return NewPage[T]([]T{}, page, false)
}
