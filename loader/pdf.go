package loader

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"contractrag/types"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	pdftypes "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

type PDFExtractor interface {
	Extract(path string) (string, error)
}

// PDFReader validates a PDF with pdfcpu, optionally crops running headers
// and footers, and extracts its text line by line.
type PDFReader struct {
	cropTop    float64
	cropBottom float64
	conf       *model.Configuration
	logger     *slog.Logger
}

func NewPDFReader(cropTop, cropBottom float64) *PDFReader {
	return &PDFReader{
		cropTop:    cropTop,
		cropBottom: cropBottom,
		conf:       model.NewDefaultConfiguration(),
		logger:     slog.Default().With("component", "pdf"),
	}
}

func (r *PDFReader) Extract(path string) (string, error) {
	if err := api.ValidateFile(path, r.conf); err != nil {
		return "", fmt.Errorf("%w: %s: %v", types.ErrUnreadablePdf, filepath.Base(path), err)
	}

	src := path
	if r.cropTop > 0 || r.cropBottom > 0 {
		cropped, err := r.crop(path)
		if err != nil {
			return "", fmt.Errorf("%w: %v", types.ErrUnreadablePdf, err)
		}
		defer os.Remove(cropped)
		src = cropped
	}

	text, err := readText(src)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", types.ErrUnreadablePdf, filepath.Base(path), err)
	}
	r.logger.Info("pdf text extracted", "file", filepath.Base(path), "chars", len(text))
	return text, nil
}

// crop writes a copy of path with the configured top and bottom margins cut
// off every page and returns the copy's path.
func (r *PDFReader) crop(path string) (string, error) {
	out, err := os.CreateTemp("", "contract-*.pdf")
	if err != nil {
		return "", err
	}
	out.Close()

	box, err := model.ParseBox(fmt.Sprintf("%.2f 0 %.2f 0", r.cropTop, r.cropBottom), pdftypes.POINTS)
	if err != nil {
		os.Remove(out.Name())
		return "", fmt.Errorf("failed to parse crop box: %w", err)
	}
	if err := api.CropFile(path, out.Name(), []string{"1-"}, box, r.conf); err != nil {
		os.Remove(out.Name())
		return "", fmt.Errorf("failed to crop PDF: %w", err)
	}
	return out.Name(), nil
}

// readText rebuilds the text of every page from its positioned glyphs so
// numbered clause markers stay at the start of a line.
func readText(path string) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("pdf parser panic: %v", rec)
		}
	}()

	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer file.Close()

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		box, ok := pageBox(page)
		glyphs := visibleGlyphs(page.Content().Text, box, ok)
		if len(glyphs) == 0 {
			continue
		}
		b.WriteString(joinGlyphs(glyphs))
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String()), nil
}

// joinGlyphs lays glyphs out in content order. A baseline shift of more than
// half the font size starts a new line; a horizontal gap wider than a
// fraction of the font size is a word break, as produced by TJ kerning.
func joinGlyphs(glyphs []pdf.Text) string {
	var (
		b       strings.Builder
		prev    pdf.Text
		started bool
	)
	for _, g := range glyphs {
		if g.S == "" {
			continue
		}
		size := g.FontSize
		if size <= 0 {
			size = 1
		}
		if started {
			switch {
			case math.Abs(g.Y-prev.Y) > size/2:
				b.WriteString("\n")
			case g.X-(prev.X+prev.W) > size*0.15 &&
				!strings.HasSuffix(prev.S, " ") && !strings.HasPrefix(g.S, " "):
				b.WriteString(" ")
			}
		}
		b.WriteString(g.S)
		prev, started = g, true
	}
	return b.String()
}

// pageBox is the page's crop box, or its media box. ok is false when the
// page declares neither.
func pageBox(page pdf.Page) (box [4]float64, ok bool) {
	for _, key := range []string{"CropBox", "MediaBox"} {
		v := page.V.Key(key)
		if v.Kind() != pdf.Array || v.Len() < 4 {
			continue
		}
		for i := range box {
			box[i] = v.Index(i).Float64()
		}
		return box, true
	}
	return box, false
}

// visibleGlyphs drops glyphs whose baseline falls outside the box, which is
// how a cropped header or footer disappears from the text.
func visibleGlyphs(glyphs []pdf.Text, box [4]float64, ok bool) []pdf.Text {
	if !ok {
		return glyphs
	}
	lly, ury := math.Min(box[1], box[3]), math.Max(box[1], box[3])
	out := glyphs[:0:0]
	for _, g := range glyphs {
		if g.Y >= lly && g.Y <= ury {
			out = append(out, g)
		}
	}
	return out
}
