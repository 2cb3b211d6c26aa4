package models

// StrokeMode задает режим наложения штриха при воспроизведении.
type StrokeMode string

const (
	// StrokeModePen нормальное наложение чернил поверх существующих
	StrokeModePen StrokeMode = "pen"
	// StrokeModeEraser destination-out: штрих стирает уже нарисованные чернила
	StrokeModeEraser StrokeMode = "eraser"
)

// Point представляет одну точку штриха в нормализованных координатах.
// XN и YN лежат в [0,1] и не зависят от размера поверхности и зума.
type Point struct {
	XN float64 `json:"xn"`
	YN float64 `json:"yn"`
}

// Stroke представляет один непрерывный штрих: стиль плюс упорядоченные
// нормализованные точки в порядке захвата. После завершения захвата
// штрих неизменяем; Size фиксируется в момент начала штриха.
type Stroke struct {
	Mode   StrokeMode `json:"mode"`   // Mode pen или eraser
	Color  string     `json:"color"`  // Color цвет чернил в формате "#rrggbb"
	Points []Point    `json:"points"` // Points последовательность точек, len >= 1
	Size   float64    `json:"size"`   // Size толщина в документных пикселях, > 0
}

// Clone создает глубокую копию штриха.
func (s *Stroke) Clone() *Stroke {
	points := make([]Point, len(s.Points))
	copy(points, s.Points)

	return &Stroke{
		Mode:   s.Mode,
		Color:  s.Color,
		Size:   s.Size,
		Points: points,
	}
}

// IsErase возвращает true для штрихов-ластиков.
func (s *Stroke) IsErase() bool {
	return s.Mode == StrokeModeEraser
}
