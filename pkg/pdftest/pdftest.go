// Package pdftest builds small, valid PDF documents for tests and reads
// back the page markers they carry.
package pdftest

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var markerPattern = regexp.MustCompile(`\(Page (\d+)\)`)

// Build returns an uncompressed PDF with the given number of pages. Page i
// draws the text "Page i" so that page identity survives splitting and
// reassembly.
func Build(pages int) []byte {
	var b strings.Builder
	b.WriteString("%PDF-1.4\n")

	total := 3 + 2*pages
	offsets := make([]int, total+1)

	kids := make([]string, pages)
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", pageObj(i+1))
	}

	offsets[1] = b.Len()
	b.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	offsets[2] = b.Len()
	fmt.Fprintf(&b, "2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n", strings.Join(kids, " "), pages)

	offsets[3] = b.Len()
	b.WriteString("3 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n")

	for n := 1; n <= pages; n++ {
		p, c := pageObj(n), pageObj(n)+1

		offsets[p] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents %d 0 R /Resources << /Font << /F1 3 0 R >> >> >>\nendobj\n", p, c)

		stream := fmt.Sprintf("BT\n/F1 12 Tf\n72 720 Td\n(Page %d) Tj\nET", n)
		offsets[c] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", c, len(stream), stream)
	}

	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n", total+1)
	b.WriteString("0000000000 65535 f \n")
	for i := 1; i <= total; i++ {
		fmt.Fprintf(&b, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", total+1, xref)

	return []byte(b.String())
}

// Markers reads data and returns, in page order, the number drawn on each
// page by Build. A page without a marker yields 0.
func Markers(data []byte) ([]int, error) {
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	markers := make([]int, ctx.PageCount)
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
		if err != nil {
			return nil, fmt.Errorf("page %d content: %w", pageNr, err)
		}
		if r == nil {
			continue
		}
		content, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("page %d content: %w", pageNr, err)
		}
		if m := markerPattern.FindSubmatch(content); m != nil {
			markers[pageNr-1], _ = strconv.Atoi(string(m[1]))
		}
	}

	return markers, nil
}

func pageObj(n int) int {
	return 2 + 2*n
}
