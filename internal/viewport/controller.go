// Package viewport владеет текущим состоянием просмотра: страница,
// зум, инструмент, шаблон бумаги. Мутации зажимаются в допустимые
// границы, запускают перерисовку и, если изменение локальное,
// публикуются в координатор синхронизации.
package viewport

import (
	"context"
	"image"
	"math"
	"sync"

	"github.com/notelink/notelink/internal/canvas"
	"github.com/notelink/notelink/internal/ink"
	"github.com/notelink/notelink/internal/models"
)

// Границы зума и шаг кнопок. Зум округляется до 2 знаков, чтобы
// сравнение с удаленным эхом было стабильным.
const (
	ZoomMin  = 0.5
	ZoomMax  = 3.0
	ZoomStep = 0.1
)

// State снимок состояния просмотра.
type State struct {
	Paper      models.PaperTemplate
	Tool       models.Tool
	Zoom       float64
	Page       int
	TotalPages int
}

// PageRenderer растрирует страницу исходного документа в заданном
// масштабе. Реализация внешняя (pdf и т.п.); ошибка не фатальна для
// остального приложения.
type PageRenderer interface {
	RenderPage(ctx context.Context, page int, scale float64) (surface *RenderedSurface, err error)
}

// RenderedSurface результат растеризации страницы.
type RenderedSurface struct {
	Image image.Image
	Size  canvas.Size
}

// RenderFunc получает итоговое состояние просмотра после мутации.
// Вызовы для устаревших поколений отбрасываются до доставки.
type RenderFunc func(state State, generation uint64)

// PublishFunc уведомляет координатор синхронизации о локальном
// изменении поля состояния просмотра.
type PublishFunc func(field string, value any)

// Controller контроллер состояния просмотра.
//
// Перерисовка асинхронна и может занять несколько кадров; счетчик
// поколений гарантирует, что завершение устаревшей перерисовки не
// вернет на экран прежний зум или страницу.
type Controller struct {
	onRender   RenderFunc
	onPublish  PublishFunc
	state      State
	generation uint64
	mu         sync.Mutex
}

// Option настраивает Controller.
type Option func(*Controller)

// WithRenderFunc задает обработчик перерисовки.
func WithRenderFunc(fn RenderFunc) Option {
	return func(c *Controller) { c.onRender = fn }
}

// WithPublishFunc задает обработчик публикации локальных изменений.
func WithPublishFunc(fn PublishFunc) Option {
	return func(c *Controller) { c.onPublish = fn }
}

// NewController создает контроллер с чистым листом: страница 1,
// зум 1.0, перо, документ не загружен.
func NewController(opts ...Option) *Controller {
	c := &Controller{
		state: State{
			Page:  1,
			Zoom:  1.0,
			Tool:  models.ToolPen,
			Paper: models.PaperPlain,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State возвращает текущий снимок состояния.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Generation возвращает текущее поколение перерисовки. Завершение
// растеризации для меньшего поколения должно быть отброшено.
func (c *Controller) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// SetDocument переводит контроллер в состояние DocumentLoaded с
// totalPages страницами и шаблоном Source. Текущая страница
// зажимается в новые границы.
func (c *Controller) SetDocument(totalPages int) {
	c.mu.Lock()
	c.state.TotalPages = totalPages
	c.state.Paper = models.PaperSource
	if c.state.Page > totalPages {
		c.state.Page = 1
	}
	c.mu.Unlock()

	c.render()
}

// DocumentLoaded возвращает true, когда загружен постраничный документ.
func (c *Controller) DocumentLoaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.documentActiveLocked()
}

func (c *Controller) documentActiveLocked() bool {
	return c.state.Paper == models.PaperSource && c.state.TotalPages > 0
}

// GoToPage переходит на страницу n, зажатую в [1, totalPages].
// Без загруженного документа навигация отключена (бланки ведут себя
// как одностраничные). remote помечает изменение как пришедшее от
// другого участника: оно не публикуется обратно.
func (c *Controller) GoToPage(n int, remote bool) {
	c.mu.Lock()
	if !c.documentActiveLocked() {
		c.mu.Unlock()
		return
	}

	page := n
	if page < 1 {
		page = 1
	}
	if page > c.state.TotalPages {
		page = c.state.TotalPages
	}
	c.state.Page = page
	c.mu.Unlock()

	c.render()
	if !remote {
		c.publish("page", page)
	}
}

// NextPage и PrevPage — навигация с шагом 1.
func (c *Controller) NextPage() { c.GoToPage(c.State().Page+1, false) }
func (c *Controller) PrevPage() { c.GoToPage(c.State().Page-1, false) }

// SetZoom устанавливает зум, зажатый в [ZoomMin, ZoomMax] и
// округленный до 2 знаков.
func (c *Controller) SetZoom(z float64, remote bool) {
	zoom := ClampZoom(z)

	c.mu.Lock()
	c.state.Zoom = zoom
	c.mu.Unlock()

	c.render()
	if !remote {
		c.publish("zoom", zoom)
	}
}

// SetPaper переключает шаблон бумаги и перерисовывает со свежим
// размером поверхности.
func (c *Controller) SetPaper(p models.PaperTemplate, remote bool) {
	if !p.Valid() {
		return
	}

	c.mu.Lock()
	c.state.Paper = p
	c.mu.Unlock()

	c.render()
	if !remote {
		c.publish("paper", p)
	}
}

// CurrentPage возвращает активную страницу.
func (c *Controller) CurrentPage() int { return c.State().Page }

// CurrentZoom возвращает текущий зум.
func (c *Controller) CurrentZoom() float64 { return c.State().Zoom }

// CurrentPaper возвращает текущий шаблон бумаги.
func (c *Controller) CurrentPaper() models.PaperTemplate { return c.State().Paper }

// ApplyRemotePage применяет страницу, выбранную другим участником.
func (c *Controller) ApplyRemotePage(page int) { c.GoToPage(page, true) }

// ApplyRemoteZoom применяет зум, выбранный другим участником.
func (c *Controller) ApplyRemoteZoom(zoom float64) { c.SetZoom(zoom, true) }

// ApplyRemotePaper применяет шаблон бумаги, выбранный другим участником.
func (c *Controller) ApplyRemotePaper(paper models.PaperTemplate) { c.SetPaper(paper, true) }

// SetTool выбирает активный инструмент. Инструмент чисто локален и
// не синхронизируется.
func (c *Controller) SetTool(t models.Tool) {
	c.mu.Lock()
	c.state.Tool = t
	c.mu.Unlock()
}

// SurfaceSize возвращает размер поверхности для текущего состояния:
// для бланков — размер листа с учетом зума; для документа размер
// определяет растеризатор, здесь возвращается бланковый размер как
// запасной.
func (c *Controller) SurfaceSize() canvas.Size {
	state := c.State()
	return ink.PaperSize(state.Zoom)
}

func (c *Controller) render() {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	state := c.state
	fn := c.onRender
	c.mu.Unlock()

	if fn != nil {
		fn(state, gen)
	}
}

func (c *Controller) publish(field string, value any) {
	c.mu.Lock()
	fn := c.onPublish
	c.mu.Unlock()

	if fn != nil {
		fn(field, value)
	}
}

// ClampZoom зажимает зум в допустимые границы и округляет до 2 знаков.
func ClampZoom(z float64) float64 {
	zoom := math.Max(ZoomMin, math.Min(ZoomMax, z))
	return math.Round(zoom*100) / 100
}
