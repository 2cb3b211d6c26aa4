// Package export собирает рабочую область комнаты в PNG и PDF.
package export

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"sort"

	"github.com/jung-kurt/gofpdf"

	"github.com/notelink/notelink/internal/ink"
	"github.com/notelink/notelink/internal/models"
)

// Размещение листа на странице A4 в миллиметрах
const (
	pdfPageWidth  = 210.0
	pdfPageHeight = 297.0
	pdfMargin     = 10.0
)

// Exporter растрирует страницы и собирает выходные файлы
type Exporter struct {
	renderer *ink.Renderer
}

// NewExporter создает экспортер
func NewExporter() *Exporter {
	return &Exporter{renderer: ink.NewRenderer()}
}

// RenderPage растрирует одну страницу: бланк плюс штрихи поверх
func (e *Exporter) RenderPage(paper models.PaperTemplate, strokes []models.Stroke) *image.RGBA {
	size := ink.PaperSize(1.0)
	width, height := int(size.Width), int(size.Height)

	surface := ink.RenderPaper(paper, width, height, 1.0)
	overlay := e.renderer.Replay(strokes, width, height, 1.0)
	draw.Draw(surface, surface.Bounds(), overlay, image.Point{}, draw.Over)

	return surface
}

// ExportPNG кодирует одну страницу в PNG
func (e *Exporter) ExportPNG(paper models.PaperTemplate, strokes []models.Stroke) ([]byte, error) {
	surface := e.RenderPage(paper, strokes)

	var buf bytes.Buffer
	if err := png.Encode(&buf, surface); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportPDF собирает многостраничный PDF из всех страниц со штрихами.
// Страницы идут по возрастанию номера; пустые страницы между ними
// пропускаются.
func (e *Exporter) ExportPDF(paper models.PaperTemplate, pages map[int][]models.Stroke) ([]byte, error) {
	numbers := make([]int, 0, len(pages))
	for page, strokes := range pages {
		if len(strokes) == 0 {
			continue
		}
		numbers = append(numbers, page)
	}
	if len(numbers) == 0 {
		return nil, fmt.Errorf("nothing to export: no strokes on any page")
	}
	sort.Ints(numbers)

	pdf := gofpdf.New("P", "mm", "A4", "")

	// Вписываем лист 900x1200 в страницу с полями, сохраняя пропорции
	imgWidth := pdfPageWidth - 2*pdfMargin
	size := ink.PaperSize(1.0)
	imgHeight := imgWidth * size.Height / size.Width
	if imgHeight > pdfPageHeight-2*pdfMargin {
		imgHeight = pdfPageHeight - 2*pdfMargin
		imgWidth = imgHeight * size.Width / size.Height
	}

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	for _, page := range numbers {
		data, err := e.ExportPNG(paper, pages[page])
		if err != nil {
			return nil, fmt.Errorf("failed to render page %d: %w", page, err)
		}

		name := fmt.Sprintf("page-%d", page)
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
		pdf.AddPage()
		pdf.ImageOptions(name, pdfMargin, pdfMargin, imgWidth, imgHeight, false, opts, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to build pdf: %w", err)
	}
	return buf.Bytes(), nil
}
