// Package certificate renders single-page PDF certificates from a PNG
// template with the participant's name overlaid.
package certificate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/shihabhq/democracy-server/internal/pngmeta"
)

var (
	ErrTemplateUnavailable = errors.New("certificate template unavailable")
	ErrRender              = errors.New("certificate render failed")
)

const (
	// 72 DPI PDF points per 96 DPI template pixel. The page always matches
	// the template's aspect ratio; nothing here hardcodes a page size.
	pageScale = 0.75

	// The name sits below the caption baked into the template image. This
	// ratio is tied to the template's artwork, not derived from anything.
	nameTopRatio   = 0.40
	nameWidthRatio = 0.70
	nameFontSizePt = 32
)

// #1a1a1a
var nameColor = struct{ r, g, b int }{26, 26, 26}

type Data struct {
	Name       string
	Score      int
	Percentage float64
	Date       time.Time
}

type Renderer struct {
	source TemplateSource
}

func NewRenderer(source TemplateSource) *Renderer {
	return &Renderer{source: source}
}

// PageSize converts template pixel dimensions to the PDF page size in
// points.
func PageSize(imgWidth, imgHeight uint32) (wPt, hPt float64) {
	return math.Round(float64(imgWidth) * pageScale), math.Round(float64(imgHeight) * pageScale)
}

// Render produces the certificate PDF in memory.
func (r *Renderer) Render(ctx context.Context, data Data) ([]byte, error) {
	pdf, err := r.compose(ctx, data)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	return buf.Bytes(), nil
}

// RenderToFile writes the certificate PDF to path.
func (r *Renderer) RenderToFile(ctx context.Context, data Data, path string) error {
	pdf, err := r.compose(ctx, data)
	if err != nil {
		return err
	}
	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("%w: %v", ErrRender, err)
	}
	return nil
}

func (r *Renderer) compose(ctx context.Context, data Data) (*gofpdf.Fpdf, error) {
	tmpl, err := r.source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateUnavailable, err)
	}

	imgW, imgH, err := pngmeta.Dimensions(tmpl)
	if err != nil {
		return nil, err
	}
	pageW, pageH := PageSize(imgW, imgH)

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: pageW, Ht: pageH},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	opt := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("template", opt, bytes.NewReader(tmpl))
	pdf.ImageOptions("template", 0, 0, pageW, pageH, false, opt, 0, "")

	pdf.SetFont("Helvetica", "B", nameFontSizePt)
	pdf.SetTextColor(nameColor.r, nameColor.g, nameColor.b)

	textW := pageW * nameWidthRatio
	pdf.SetXY((pageW-textW)/2, pageH*nameTopRatio)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.CellFormat(textW, nameFontSizePt, tr(data.Name), "", 0, "C", false, 0, "")

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	return pdf, nil
}
