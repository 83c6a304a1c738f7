package ingest

import (
	"errors"
	"fmt"

	"github.com/gen2brain/go-fitz"

	"github.com/vrsandeep/docscan/internal/util"
)

var errNoPages = errors.New("PDF has no pages")

// rasterizePDF renders every page of the PDF at path to
// "{prefix}_page_{n}.jpg", n starting at 1. On failure any pages already
// written are removed and no paths are returned.
func rasterizePDF(path, prefix string, dpi float64, quality int) (pages []string, err error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	defer func() {
		if err != nil {
			for _, p := range pages {
				util.RemoveQuietly(p)
			}
			pages = nil
		}
	}()

	n := doc.NumPage()
	if n == 0 {
		return nil, errNoPages
	}
	for i := 0; i < n; i++ {
		img, renderErr := doc.ImageDPI(i, dpi)
		if renderErr != nil {
			return pages, fmt.Errorf("failed to render page %d: %w", i+1, renderErr)
		}
		out := fmt.Sprintf("%s_page_%d.jpg", prefix, i+1)
		if err = writeJPEG(out, img, quality); err != nil {
			return pages, fmt.Errorf("page %d: %w", i+1, err)
		}
		pages = append(pages, out)
	}
	return pages, nil
}
