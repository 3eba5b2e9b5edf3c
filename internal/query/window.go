package query

// Window returns the slice of items described by p. It is the in-memory
// counterpart of skip/limit for listings filtered in process, and costs a
// full read of the underlying collection.
func Window[T any](items []T, p Params) []T {
	start := p.Skip()
	if start < 0 || start >= int64(len(items)) {
		return []T{}
	}
	end := start + int64(p.Limit)
	if end < start || end > int64(len(items)) {
		end = int64(len(items))
	}
	return items[start:end]
}

// Filter keeps the items keep reports true for, preserving order.
func Filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}
