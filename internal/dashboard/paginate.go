package dashboard

// DefaultPageSize is used when a non-positive page size is requested.
const DefaultPageSize = 10

// TotalPages returns ceil(n/pageSize), or 0 for an empty collection.
func TotalPages(n, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if n <= 0 {
		return 0
	}
	return (n + pageSize - 1) / pageSize
}

// ShowPagination reports whether a pagination control is worth showing.
func ShowPagination(totalPages int) bool {
	return totalPages > 1
}

// PageOf returns the 1-indexed page of items. Pages outside the collection
// are empty, never an error. The result shares items' backing array.
func PageOf[T any](items []T, pageNumber, pageSize int) []T {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageNumber < 1 {
		return items[:0:0]
	}
	start := (pageNumber - 1) * pageSize
	if start >= len(items) {
		return items[:0:0]
	}
	end := min(start+pageSize, len(items))
	return items[start:end:end]
}
