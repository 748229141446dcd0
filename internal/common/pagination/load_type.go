package pagination

// LoadType tells a mediator which direction a pager is loading in.
type LoadType int

const (
	// Refresh rebuilds the cached list from the first remote page.
	Refresh LoadType = iota
	// Append loads the page after the last one stored.
	Append
	// Prepend loads before the first page; remote feeds never have one.
	Prepend
)

func (t LoadType) String() string {
	switch t {
	case Refresh:
		return "refresh"
	case Append:
		return "append"
	case Prepend:
		return "prepend"
	default:
		return "unknown"
	}
}
