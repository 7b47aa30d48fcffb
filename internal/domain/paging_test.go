package domain

import "testing"

func TestPageOf(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		size      int
		wantFirst int
	}{
		{name: "first page", page: 1, size: 20, wantFirst: 1},
		{name: "second page", page: 2, size: 20, wantFirst: 21},
		{name: "page clamped to one", page: 0, size: 20, wantFirst: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := PageOf(tt.page, tt.size)
			if req.First != tt.wantFirst || req.Size != tt.size {
				t.Errorf("expected first %d size %d, got %+v", tt.wantFirst, tt.size, req)
			}
		})
	}
}

func TestPagingRequestOffset(t *testing.T) {
	if got := (PagingRequest{First: 21, Size: 20}).Offset(); got != 20 {
		t.Errorf("expected offset 20, got %d", got)
	}
	if got := (PagingRequest{}).Offset(); got != 0 {
		t.Errorf("expected zero offset for zero request, got %d", got)
	}
	if !PagingAll().Unlimited() {
		t.Errorf("expected PagingAll to be unlimited")
	}
	if (PagingRequest{First: 1, Size: 10}).Unlimited() {
		t.Errorf("expected sized request to be limited")
	}
}

func TestNewPaging(t *testing.T) {
	p := NewPaging(PagingRequest{First: 11, Size: 10}, 42)
	if p.First != 11 || p.Size != 10 || p.Total != 42 {
		t.Errorf("unexpected paging: %+v", p)
	}
	p = NewPaging(PagingRequest{}, 0)
	if p.First != 1 {
		t.Errorf("expected first clamped to 1, got %d", p.First)
	}
}
