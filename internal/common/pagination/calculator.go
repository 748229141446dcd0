package pagination

// CalculateOffset converts a 1-based page into a row offset.
//
//   - Page 1, Limit 15 -> Offset 0
//   - Page 3, Limit 15 -> Offset 30
func CalculateOffset(page, limit int) int {
	if page < 1 {
		return 0
	}
	return (page - 1) * limit
}

// RowsNeeded is the number of rows a cache must hold to serve page in full.
func RowsNeeded(page, limit int) int64 {
	return int64(page) * int64(limit)
}
