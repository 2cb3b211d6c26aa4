// Package gesture различает рисование, панорамирование, пинч-зум и
// свайп-перелистывание в одном потоке касаний.
//
// Арбитр — явная машина состояний: каждое состояние взаимоисключающее,
// переход — чистая функция от (состояние, событие, инструмент, число
// касаний). Выбор инструмента всегда важнее эвристик по числу касаний:
// с пером два случайных касания (ладонь) не должны включать зум.
package gesture

import (
	"math"
	"time"

	"github.com/notelink/notelink/internal/models"
	"github.com/notelink/notelink/internal/viewport"
)

// State состояние арбитра.
type State int

const (
	// Idle нет активного жеста
	Idle State = iota
	// Drawing одноточечный ввод чернил пером или ластиком
	Drawing
	// Panning перетаскивание видимой области рукой
	Panning
	// Pinching двухпальцевый зум рукой
	Pinching
	// SwipeTracking горизонтальный свайп-перелистывание
	SwipeTracking
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Drawing:
		return "drawing"
	case Panning:
		return "panning"
	case Pinching:
		return "pinching"
	case SwipeTracking:
		return "swipe"
	}
	return "unknown"
}

// Пороги жестов. Свайп срабатывает либо по дистанции, либо по
// мгновенной скорости: медленное осознанное перетаскивание и быстрый
// флик оба засчитываются, случайный тап — нет. Перелистывание
// подавляется при зуме выше SwipeZoomGate: горизонтальный жест тогда
// означает панорамирование внутри страницы.
const (
	SwipeMaxDrag   = 120.0 // максимальное визуальное смещение, px
	SwipeDistance  = 80.0  // порог дистанции, px
	SwipeVelocity  = 0.6   // порог скорости, px/ms
	SwipeZoomGate  = 1.05
	swipeMinMillis = 1.0
)

// Touch активная точка касания на поверхности.
type Touch struct {
	X, Y float64
}

// Host — сторона приложения, которой арбитр делегирует жесты.
type Host interface {
	// Tool активный инструмент
	Tool() models.Tool
	// Zoom текущий зум
	Zoom() float64
	// DocumentLoaded true при загруженном постраничном документе
	DocumentLoaded() bool

	// BeginStroke/ExtendStroke/EndStroke/CancelStroke делегируют
	// захват чернил хранилищу штрихов (координаты поверхности)
	BeginStroke(x, y float64) bool
	ExtendStroke(x, y float64)
	EndStroke()
	CancelStroke()

	// PanBy прокручивает видимую область на дельту
	PanBy(dx, dy float64)

	// PreviewScale дешевый масштабирующий transform во время пинча
	PreviewScale(zoom float64)
	// CommitZoom ровно одна полная перерисовка по окончании пинча
	CommitZoom(zoom float64)

	// SwipeOffset ограниченное визуальное смещение страницы;
	// 0 возвращает страницу на место
	SwipeOffset(dx float64)
	// TurnPage перелистывает на delta страниц
	TurnPage(delta int)
}

// Arbiter машина состояний жестов.
type Arbiter struct {
	host Host
	now  func() time.Time

	state State

	// панорамирование
	panX, panY float64

	// пинч
	pinchDist0 float64
	pinchZoom0 float64
	pinchZoom  float64

	// свайп
	swipeX0    float64
	swipeStart time.Time
	swipeDX    float64
}

// Option настраивает Arbiter.
type Option func(*Arbiter)

// WithClock подменяет источник времени (для тестов скорости свайпа).
func WithClock(now func() time.Time) Option {
	return func(a *Arbiter) { a.now = now }
}

// NewArbiter создает арбитр в состоянии Idle.
func NewArbiter(host Host, opts ...Option) *Arbiter {
	a := &Arbiter{
		host:  host,
		now:   time.Now,
		state: Idle,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// State возвращает текущее состояние арбитра.
func (a *Arbiter) State() State {
	return a.state
}

// TouchDown обрабатывает появление касаний. touches — все активные
// точки после события; onCanvas — легло ли касание на чернильную
// поверхность (а не на поля вокруг страницы).
func (a *Arbiter) TouchDown(touches []Touch, onCanvas bool) {
	tool := a.host.Tool()

	switch {
	case a.state == Drawing:
		// Лишние касания во время рисования игнорируются: приоритет
		// инструмента запрещает пинч с пером в руке
		return

	case tool == models.ToolHand && len(touches) == 2:
		// Переход Panning -> Pinching при втором пальце допустим
		a.enterPinch(touches)

	case tool == models.ToolHand && len(touches) == 1:
		a.state = Panning
		a.panX, a.panY = touches[0].X, touches[0].Y

	case tool.DrawsInk() && len(touches) == 1 && onCanvas:
		if a.host.BeginStroke(touches[0].X, touches[0].Y) {
			a.state = Drawing
		}

	case tool.DrawsInk() && len(touches) == 1 &&
		a.host.Zoom() <= SwipeZoomGate && a.host.DocumentLoaded():
		a.state = SwipeTracking
		a.swipeX0 = touches[0].X
		a.swipeStart = a.now()
		a.swipeDX = 0
	}
}

// TouchMove обрабатывает перемещение активных касаний.
func (a *Arbiter) TouchMove(touches []Touch) {
	if len(touches) == 0 {
		return
	}

	switch a.state {
	case Drawing:
		a.host.ExtendStroke(touches[0].X, touches[0].Y)

	case Panning:
		if len(touches) != 1 || a.host.Tool() != models.ToolHand {
			return
		}
		a.host.PanBy(touches[0].X-a.panX, touches[0].Y-a.panY)
		a.panX, a.panY = touches[0].X, touches[0].Y

	case Pinching:
		if len(touches) != 2 {
			return
		}
		ratio := touchDistance(touches) / a.pinchDist0
		a.pinchZoom = clampPinchZoom(a.pinchZoom0 * ratio)
		a.host.PreviewScale(a.pinchZoom)

	case SwipeTracking:
		a.swipeDX = touches[0].X - a.swipeX0
		a.host.SwipeOffset(clampDrag(a.swipeDX))
	}
}

// TouchUp обрабатывает отпускание; touches — оставшиеся точки.
// Все состояния возвращаются в Idle при нуле касаний.
func (a *Arbiter) TouchUp(touches []Touch) {
	switch a.state {
	case Drawing:
		if len(touches) == 0 {
			a.host.EndStroke()
			a.state = Idle
		}

	case Panning:
		if len(touches) == 0 {
			a.state = Idle
		}

	case Pinching:
		if len(touches) >= 2 {
			return
		}
		// Ровно одна полная перерисовка с итоговым зумом
		a.host.CommitZoom(a.pinchZoom)
		if len(touches) == 1 && a.host.Tool() == models.ToolHand {
			a.state = Panning
			a.panX, a.panY = touches[0].X, touches[0].Y
		} else {
			a.state = Idle
		}

	case SwipeTracking:
		if len(touches) != 0 {
			return
		}
		a.finishSwipe()
		a.state = Idle

	default:
		if len(touches) == 0 {
			a.state = Idle
		}
	}
}

// TouchCancel аварийно завершает сенсорную сессию: незавершенный
// штрих отбрасывается без коммита, визуальное смещение свайпа
// сбрасывается, арбитр возвращается в Idle.
func (a *Arbiter) TouchCancel() {
	switch a.state {
	case Drawing:
		a.host.CancelStroke()
	case SwipeTracking:
		a.host.SwipeOffset(0)
	}
	a.state = Idle
}

func (a *Arbiter) enterPinch(touches []Touch) {
	dist := touchDistance(touches)
	if dist == 0 {
		dist = 1
	}
	a.state = Pinching
	a.pinchDist0 = dist
	a.pinchZoom0 = a.host.Zoom()
	a.pinchZoom = a.pinchZoom0
}

func (a *Arbiter) finishSwipe() {
	elapsed := math.Max(swipeMinMillis, float64(a.now().Sub(a.swipeStart).Milliseconds()))
	velocity := math.Abs(a.swipeDX) / elapsed
	crossed := math.Abs(a.swipeDX) > SwipeDistance || velocity > SwipeVelocity

	// Смещение анимируется домой в любом случае
	a.host.SwipeOffset(0)

	if !crossed {
		return
	}
	if a.swipeDX < 0 {
		a.host.TurnPage(1)
	} else {
		a.host.TurnPage(-1)
	}
}

func touchDistance(touches []Touch) float64 {
	return math.Hypot(touches[0].X-touches[1].X, touches[0].Y-touches[1].Y)
}

func clampDrag(dx float64) float64 {
	return math.Max(-SwipeMaxDrag, math.Min(SwipeMaxDrag, dx))
}

func clampPinchZoom(z float64) float64 {
	// Те же границы и округление, что и у контроллера просмотра,
	// чтобы удаленное эхо сравнивалось стабильно
	return viewport.ClampZoom(z)
}
