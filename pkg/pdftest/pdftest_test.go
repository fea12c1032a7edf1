package pdftest_test

import (
	"bytes"
	"slices"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/JaimeStill/folio/pkg/pdftest"
)

func TestBuild(t *testing.T) {
	for _, pages := range []int{1, 3, 10} {
		data := pdftest.Build(pages)

		count, err := api.PageCount(bytes.NewReader(data), nil)
		if err != nil {
			t.Fatalf("PageCount(%d pages) error = %v", pages, err)
		}
		if count != pages {
			t.Errorf("page count = %d, want %d", count, pages)
		}

		markers, err := pdftest.Markers(data)
		if err != nil {
			t.Fatalf("Markers() error = %v", err)
		}

		want := make([]int, pages)
		for i := range want {
			want[i] = i + 1
		}
		if !slices.Equal(markers, want) {
			t.Errorf("markers = %v, want %v", markers, want)
		}
	}
}
