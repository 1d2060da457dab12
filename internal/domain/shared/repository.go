package shared

import "strings"

// SortKey is one component of a multi-key sort order.
type SortKey struct {
	Field string
	Desc  bool
}

// Filter represents query filter options for list endpoints.
// Sort accepts "field.asc|other.desc" concatenations.
type Filter struct {
	Page     int
	PageSize int
	Sort     []SortKey
	Search   string
	Filters  map[string]interface{}
}

// DefaultFilter returns a filter with default values.
func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: 20,
		Sort:     []SortKey{{Field: "created_at", Desc: true}},
		Filters:  make(map[string]interface{}),
	}
}

// ParseSort parses a "field.asc|field2.desc" expression. Unknown
// directions default to ascending; empty segments are skipped.
func ParseSort(spec string) []SortKey {
	if spec == "" {
		return nil
	}
	var keys []SortKey
	for _, part := range strings.Split(spec, "|") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		field, dir := part, "asc"
		if idx := strings.LastIndex(part, "."); idx > 0 {
			field, dir = part[:idx], part[idx+1:]
		}
		keys = append(keys, SortKey{Field: field, Desc: strings.EqualFold(dir, "desc")})
	}
	return keys
}

// Paginated represents a paginated result.
type Paginated[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginated creates a new paginated result.
func NewPaginated[T any](items []T, total int64, page, pageSize int) Paginated[T] {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return Paginated[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
