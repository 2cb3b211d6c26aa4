package ink

import (
	"image"
	"math"

	"github.com/gogpu/gg"

	"github.com/notelink/notelink/internal/canvas"
	"github.com/notelink/notelink/internal/models"
)

// Размер бланка в документных пикселях и шаг разметки по шаблонам.
const (
	paperWidth  = 900
	paperHeight = 1200

	ruledSpacing  = 28
	gridSpacing   = 16
	genkouSpacing = 24
)

// PaperSize возвращает пиксельный размер бланка при заданном зуме.
func PaperSize(zoom float64) canvas.Size {
	return canvas.Size{
		Width:  math.Round(paperWidth * zoom),
		Height: math.Round(paperHeight * zoom),
	}
}

// RenderPaper рисует фон бланка: белый лист плюс разметка шаблона.
// Шаг разметки масштабируется зумом, так что линейка совпадает с
// документным пространством. PaperSource без документа ведет себя
// как чистый лист.
func RenderPaper(template models.PaperTemplate, width, height int, zoom float64) *image.RGBA {
	ctx := gg.NewContext(width, height)
	defer func() { _ = ctx.Close() }()

	ctx.SetRGB(1, 1, 1)
	ctx.DrawRectangle(0, 0, float64(width), float64(height))
	_ = ctx.Fill()

	ctx.SetLineWidth(1)

	switch template {
	case models.PaperRuled:
		ctx.SetHexColor("#e3e7ee")
		drawHorizontalRules(ctx, width, height, ruledSpacing*zoom)
	case models.PaperGrid:
		ctx.SetRGBA(0, 0, 0, 0.08)
		drawHorizontalRules(ctx, width, height, gridSpacing*zoom)
		drawVerticalRules(ctx, width, height, gridSpacing*zoom)
	case models.PaperGenkou:
		ctx.SetRGBA(0, 0, 0, 0.1)
		drawHorizontalRules(ctx, width, height, genkouSpacing*zoom)
		drawVerticalRules(ctx, width, height, genkouSpacing*zoom)
	}

	return toRGBA(ctx.Image())
}

func drawHorizontalRules(ctx *gg.Context, width, height int, spacing float64) {
	if spacing <= 0 {
		return
	}
	for y := spacing; y < float64(height); y += spacing {
		ctx.DrawLine(0, y, float64(width), y)
		_ = ctx.Stroke()
	}
}

func drawVerticalRules(ctx *gg.Context, width, height int, spacing float64) {
	if spacing <= 0 {
		return
	}
	for x := spacing; x < float64(width); x += spacing {
		ctx.DrawLine(x, 0, x, float64(height))
		_ = ctx.Stroke()
	}
}
