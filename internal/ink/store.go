// Package ink содержит хранилище штрихов и воспроизводящий рендерер.
//
// Хранилище владеет векторными штрихами по страницам и единственным
// слотом захвата; рендерер воспроизводит страницу из нормализованных
// точек на пиксельную поверхность при любом зуме.
package ink

import (
	"sync"

	"github.com/notelink/notelink/internal/models"
)

// PreviewFunc запрашивает предварительную перерисовку страницы во
// время захвата штриха. Вызов — побочный эффект, не коммит.
type PreviewFunc func(page int)

// Store хранит завершенные штрихи по страницам (порядок вставки =
// z-порядок = порядок воспроизведения) и текущий захват.
//
// Страница создается лениво при первом обращении и очищается только
// явным ClearPage или сбросом всего хранилища.
type Store struct {
	pages       map[int][]models.Stroke
	capture     *models.Stroke
	onPreview   PreviewFunc
	capturePage int
	mu          sync.RWMutex
}

// NewStore создает пустое хранилище штрихов.
func NewStore() *Store {
	return &Store{
		pages: make(map[int][]models.Stroke),
	}
}

// SetPreviewFunc задает обработчик предварительной перерисовки.
func (s *Store) SetPreviewFunc(fn PreviewFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onPreview = fn
}

// BeginStroke начинает сессию захвата нового штриха на странице page.
// Возвращает false без побочных эффектов, если захват уже активен или
// активный инструмент — рука. Стиль штриха фиксируется здесь: смена
// размера или цвета в середине захвата на штрих не влияет.
func (s *Store) BeginStroke(page int, tool models.Tool, color string, size float64, first models.Point) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.capture != nil || !tool.DrawsInk() {
		return false
	}

	s.capture = &models.Stroke{
		Mode:   tool.StrokeMode(),
		Color:  color,
		Size:   size,
		Points: []models.Point{first},
	}
	s.capturePage = page

	return true
}

// ExtendStroke добавляет нормализованную точку к захватываемому штриху
// и запрашивает предварительную перерисовку. Без активного захвата —
// no-op.
func (s *Store) ExtendStroke(p models.Point) {
	s.mu.Lock()
	if s.capture == nil {
		s.mu.Unlock()
		return
	}
	s.capture.Points = append(s.capture.Points, p)
	preview := s.onPreview
	page := s.capturePage
	s.mu.Unlock()

	if preview != nil {
		preview(page)
	}
}

// EndStroke завершает захват: штрих добавляется в конец
// последовательности своей страницы, слот захвата очищается.
// Повторный вызов без активного захвата — no-op, штрих коммитится
// ровно один раз. Возвращает завершенный штрих, его страницу и true
// при успешном коммите.
func (s *Store) EndStroke() (models.Stroke, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.capture == nil {
		return models.Stroke{}, 0, false
	}

	finished := *s.capture
	page := s.capturePage
	s.pages[page] = append(s.pages[page], finished)
	s.capture = nil

	return finished, page, true
}

// CancelStroke отбрасывает незавершенный захват без коммита.
// Используется при аварийном окончании сенсорной сессии (touch-cancel).
func (s *Store) CancelStroke() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.capture = nil
}

// Capturing возвращает true во время активной сессии захвата.
func (s *Store) Capturing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.capture != nil
}

// AppendRemote коммитит удаленный штрих в конец последовательности
// страницы, минуя сессию захвата.
func (s *Store) AppendRemote(page int, stroke models.Stroke) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[page] = append(s.pages[page], stroke)
}

// ClearPage заменяет последовательность штрихов страницы пустой.
// Остальные страницы не затрагиваются.
func (s *Store) ClearPage(page int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[page] = nil
}

// Strokes возвращает копию последовательности завершенных штрихов
// страницы в порядке воспроизведения.
func (s *Store) Strokes(page int) []models.Stroke {
	s.mu.RLock()
	defer s.mu.RUnlock()

	strokes := make([]models.Stroke, len(s.pages[page]))
	copy(strokes, s.pages[page])
	return strokes
}

// StrokesWithCapture возвращает штрихи страницы плюс захватываемый
// штрих в конце, если захват активен и относится к этой странице.
// Используется рендерером предварительного просмотра.
func (s *Store) StrokesWithCapture(page int) []models.Stroke {
	s.mu.RLock()
	defer s.mu.RUnlock()

	strokes := make([]models.Stroke, 0, len(s.pages[page])+1)
	strokes = append(strokes, s.pages[page]...)
	if s.capture != nil && s.capturePage == page {
		strokes = append(strokes, *s.capture)
	}
	return strokes
}

// Snapshot возвращает глубокую копию всех страниц для сохранения.
func (s *Store) Snapshot() map[int][]models.Stroke {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make(map[int][]models.Stroke, len(s.pages))
	for page, strokes := range s.pages {
		cp := make([]models.Stroke, len(strokes))
		copy(cp, strokes)
		snapshot[page] = cp
	}
	return snapshot
}

// Restore заменяет содержимое хранилища снимком. Активный захват
// отбрасывается.
func (s *Store) Restore(snapshot map[int][]models.Stroke) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pages = make(map[int][]models.Stroke, len(snapshot))
	for page, strokes := range snapshot {
		cp := make([]models.Stroke, len(strokes))
		copy(cp, strokes)
		s.pages[page] = cp
	}
	s.capture = nil
}
