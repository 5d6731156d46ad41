package pdffigures

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/pkg/errors"
)

// PdfiumRenderer rasterizes PDF documents through a pdfium instance.
type PdfiumRenderer struct {
	instance pdfium.Pdfium
	dpi      int
}

// NewPdfiumRenderer creates a renderer drawing pages at the given DPI.
func NewPdfiumRenderer(instance pdfium.Pdfium, dpi int) *PdfiumRenderer {
	return &PdfiumRenderer{
		instance: instance,
		dpi:      dpi,
	}
}

// RenderDocument opens the PDF at filePath and renders every page to an
// image in page order.
func (r *PdfiumRenderer) RenderDocument(filePath string) ([]image.Image, error) {
	doc, err := r.instance.OpenDocument(&requests.OpenDocument{
		FilePath: &filePath,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open PDF document")
	}
	defer r.instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{
		Document: doc.Document,
	})

	pageCount, err := r.instance.FPDF_GetPageCount(&requests.FPDF_GetPageCount{
		Document: doc.Document,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get page count")
	}

	pages := make([]image.Image, 0, pageCount.PageCount)
	for i := 0; i < pageCount.PageCount; i++ {
		render, err := r.instance.RenderPageInDPI(&requests.RenderPageInDPI{
			DPI: r.dpi,
			Page: requests.Page{
				ByIndex: &requests.PageByIndex{
					Document: doc.Document,
					Index:    i,
				},
			},
		})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to render page %d", i+1)
		}

		// The render buffer is reclaimed by Cleanup, so take a copy.
		pages = append(pages, imaging.Clone(render.Result.Image))
		render.Cleanup()
	}

	return pages, nil
}
