package domain

// PagingRequest selects one page of a result set. First is one-based; a Size
// of zero means "no limit".
type PagingRequest struct {
	First int `json:"first"`
	Size  int `json:"size"`
}

// PageOf builds a request for the given one-based page number.
func PageOf(page, size int) PagingRequest {
	if page < 1 {
		page = 1
	}
	return PagingRequest{First: (page-1)*size + 1, Size: size}
}

// PagingAll requests every matching item.
func PagingAll() PagingRequest {
	return PagingRequest{First: 1, Size: 0}
}

// Offset returns the zero-based offset of the first requested item.
func (p PagingRequest) Offset() int {
	if p.First < 1 {
		return 0
	}
	return p.First - 1
}

// Unlimited reports whether the request asks for every item.
func (p PagingRequest) Unlimited() bool {
	return p.Size <= 0
}

// Paging carries the page metadata accompanying a result set.
type Paging struct {
	First int `json:"first"`
	Size  int `json:"size"`
	Total int `json:"total"`
}

// NewPaging pairs a request with the total match count.
func NewPaging(request PagingRequest, total int) Paging {
	first := request.First
	if first < 1 {
		first = 1
	}
	return Paging{First: first, Size: request.Size, Total: total}
}
