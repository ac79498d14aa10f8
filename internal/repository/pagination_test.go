package repository

import "testing"

func TestPageRequestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   PageRequest
		want PageRequest
	}{
		{name: "defaults", in: PageRequest{}, want: PageRequest{Page: 1, PageSize: DefaultPageSize}},
		{name: "negative", in: PageRequest{Page: -2, PageSize: -1}, want: PageRequest{Page: 1, PageSize: DefaultPageSize}},
		{name: "clamped", in: PageRequest{Page: 3, PageSize: 500}, want: PageRequest{Page: 3, PageSize: MaxPageSize}},
		{name: "kept", in: PageRequest{Page: 2, PageSize: 25}, want: PageRequest{Page: 2, PageSize: 25}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.in.Normalize(); got != tc.want {
				t.Fatalf("Normalize(%+v) = %+v, want %+v", tc.in, got, tc.want)
			}
		})
	}
	if DefaultPageSize != 10 {
		t.Fatalf("stadium pages default to 10 cards, got %d", DefaultPageSize)
	}
	if off := (PageRequest{Page: 3, PageSize: 10}).Offset(); off != 20 {
		t.Fatalf("expected offset 20, got %d", off)
	}
}

func TestNewPageResult(t *testing.T) {
	req := PageRequest{Page: 2, PageSize: 10}
	res := NewPageResult([]int{1, 2, 3}, req, 23)
	if res.TotalPages != 3 || res.Page != 2 || res.PageSize != 10 || res.Total != 23 {
		t.Fatalf("unexpected page result: %+v", res)
	}

	empty := NewPageResult[int](nil, req, 0)
	if empty.Items == nil || len(empty.Items) != 0 || empty.TotalPages != 0 {
		t.Fatalf("expected empty non-nil page, got %+v", empty)
	}
}
