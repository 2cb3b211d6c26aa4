// Package canvas преобразует пиксельные координаты поверхности в
// нормализованные дробные координаты и обратно. Нормализованная точка
// не зависит от размера поверхности и текущего зума, поэтому штрихи
// воспроизводятся без потерь на любом масштабе.
package canvas

import "github.com/notelink/notelink/internal/models"

// Size размер пиксельной поверхности.
type Size struct {
	Width  float64
	Height float64
}

// Normalizer переводит координаты для поверхности фиксированного размера.
type Normalizer struct {
	size Size
}

// NewNormalizer создает Normalizer для поверхности заданного размера.
func NewNormalizer(size Size) *Normalizer {
	return &Normalizer{size: size}
}

// Normalize переводит пиксельную позицию в нормализованную точку.
// Результат зажимается в [0,1] по обеим осям: позиции за границей
// поверхности (палец ушел за край) прижимаются к краю.
func (n *Normalizer) Normalize(x, y float64) models.Point {
	return models.Point{
		XN: clamp01(safeDiv(x, n.size.Width)),
		YN: clamp01(safeDiv(y, n.size.Height)),
	}
}

// Denormalize переводит нормализованную точку в пиксельную позицию
// на поверхности данного размера.
func (n *Normalizer) Denormalize(p models.Point) (x, y float64) {
	return p.XN * n.size.Width, p.YN * n.size.Height
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
