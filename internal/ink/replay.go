package ink

import (
	"image"
	"image/draw"

	"github.com/gogpu/gg"

	"github.com/notelink/notelink/internal/models"
)

// Renderer воспроизводит штрихи страницы на пиксельную поверхность.
//
// Толщина линии равна size*zoom: воспринимаемая толщина чернил
// постоянна в документном пространстве, а перерисовка из векторных
// точек не дает выцветания при зуме. Ластик накладывается в режиме
// destination-out — стирает только уже нанесенные на поверхность
// чернила и никогда ничего не закрашивает.
type Renderer struct{}

// NewRenderer создает рендерер воспроизведения.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Replay очищает поверхность и воспроизводит штрихи по порядку.
// Некорректные штрихи не приводят к ошибке: пустой пропускается,
// одноточечный вырождается в точку размером с толщину линии.
func (r *Renderer) Replay(strokes []models.Stroke, width, height int, zoom float64) *image.RGBA {
	surface := image.NewRGBA(image.Rect(0, 0, width, height))
	if width <= 0 || height <= 0 {
		return surface
	}

	for _, s := range strokes {
		if len(s.Points) == 0 {
			continue
		}
		layer := strokeLayer(s, width, height, zoom)
		if s.IsErase() {
			eraseAlpha(surface, layer)
		} else {
			draw.Draw(surface, surface.Bounds(), layer, image.Point{}, draw.Over)
		}
	}

	return surface
}

// strokeLayer рисует один штрих на прозрачном слое того же размера.
func strokeLayer(s models.Stroke, width, height int, zoom float64) *image.RGBA {
	ctx := gg.NewContext(width, height)
	defer func() { _ = ctx.Close() }()

	if s.IsErase() {
		// Для ластика важна только альфа слоя
		ctx.SetRGBA(0, 0, 0, 1)
	} else {
		ctx.SetHexColor(s.Color)
	}
	ctx.SetLineWidth(s.Size * zoom)
	ctx.SetLineCap(gg.LineCapRound)
	ctx.SetLineJoin(gg.LineJoinRound)

	w := float64(width)
	h := float64(height)

	if len(s.Points) == 1 {
		p := s.Points[0]
		ctx.DrawCircle(p.XN*w, p.YN*h, s.Size*zoom/2)
		_ = ctx.Fill()
	} else {
		for i, p := range s.Points {
			if i == 0 {
				ctx.MoveTo(p.XN*w, p.YN*h)
			} else {
				ctx.LineTo(p.XN*w, p.YN*h)
			}
		}
		_ = ctx.Stroke()
	}

	return toRGBA(ctx.Image())
}

// eraseAlpha применяет destination-out: каждый канал поверхности
// умножается на (1 - альфа маски). Пиксели под полной альфой маски
// становятся полностью прозрачными.
func eraseAlpha(dst *image.RGBA, mask *image.RGBA) {
	b := dst.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		dstRow := dst.Pix[dst.PixOffset(b.Min.X, y):dst.PixOffset(b.Max.X, y)]
		maskRow := mask.Pix[mask.PixOffset(b.Min.X, y):mask.PixOffset(b.Max.X, y)]
		for x := 0; x+3 < len(dstRow); x += 4 {
			a := uint32(maskRow[x+3])
			if a == 0 {
				continue
			}
			keep := 255 - a
			dstRow[x+0] = uint8(uint32(dstRow[x+0]) * keep / 255)
			dstRow[x+1] = uint8(uint32(dstRow[x+1]) * keep / 255)
			dstRow[x+2] = uint8(uint32(dstRow[x+2]) * keep / 255)
			dstRow[x+3] = uint8(uint32(dstRow[x+3]) * keep / 255)
		}
	}
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	draw.Draw(rgba, b, img, b.Min, draw.Src)
	return rgba
}
