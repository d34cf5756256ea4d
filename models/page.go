package models

// Page is the envelope for paginated listings.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"total_elements"`
	TotalPages    int64 `json:"total_pages"`
	CurrentPage   int64 `json:"current_page"`
	PageSize      int64 `json:"page_size"`
}

// PageRequest carries normalized pagination parameters. Page is zero-based.
type PageRequest struct {
	Page int64
	Size int64
}

// Offset returns the row offset for the request.
func (p PageRequest) Offset() int64 {
	return p.Page * p.Size
}

// NewPage assembles a Page from a content slice and the total row count.
func NewPage[T any](content []T, total int64, req PageRequest) Page[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := int64(0)
	if req.Size > 0 {
		totalPages = (total + req.Size - 1) / req.Size
	}
	return Page[T]{
		Content:       content,
		TotalElements: total,
		TotalPages:    totalPages,
		CurrentPage:   req.Page,
		PageSize:      req.Size,
	}
}
