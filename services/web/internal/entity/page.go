package entity

type Pagination struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}

func (p *Pagination) HasPrev() bool {
	return p != nil && p.CurrentPage > 1
}

func (p *Pagination) HasNext() bool {
	return p != nil && p.CurrentPage < p.LastPage
}

// PostPage is a normalised collection; Pagination is nil when the server
// returned a bare array.
type PostPage struct {
	Items      []Post
	Pagination *Pagination
}
