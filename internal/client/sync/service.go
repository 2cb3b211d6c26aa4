// Package sync согласует локальную рабочую область с состоянием
// комнаты на сервере: публикует локальные изменения и применяет
// удаленные события.
package sync

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	gosync "sync"
	"time"

	httpClient "github.com/notelink/notelink/internal/client/api"
	"github.com/notelink/notelink/internal/models"
	"github.com/notelink/notelink/pkg/api"
)

// ZoomEpsilon — порог сравнения зума: меньшие расхождения считаются
// равенством и не приводят к перерисовке.
const ZoomEpsilon = 0.001

// resubscribeDelay пауза перед переподключением к потоку событий
const resubscribeDelay = time.Second

// Viewport определяет операции состояния просмотра, применяемые
// координатором при удаленных изменениях.
type Viewport interface {
	// CurrentPage возвращает активную страницу
	CurrentPage() int

	// CurrentZoom возвращает текущий зум
	CurrentZoom() float64

	// CurrentPaper возвращает текущий шаблон бумаги
	CurrentPaper() models.PaperTemplate

	// ApplyRemotePage применяет страницу, выбранную другим актором
	ApplyRemotePage(page int)

	// ApplyRemoteZoom применяет зум, выбранный другим актором
	ApplyRemoteZoom(zoom float64)

	// ApplyRemotePaper применяет шаблон бумаги, выбранный другим актором
	ApplyRemotePaper(paper models.PaperTemplate)
}

// StrokeSink принимает удаленные штрихи постранично
type StrokeSink interface {
	AppendRemote(page int, stroke models.Stroke)
}

// RoleSink получает обновления ролей из снимков комнаты
type RoleSink interface {
	UpdateRole(room *models.RoomState)
}

// WriteGate — консультативный предикат записи. Публикации
// пропускаются, когда роль не дает права записи; авторитетная
// проверка остается за сервером. Реализуется session.Session.
type WriteGate interface {
	CanWrite() bool
}

// DocumentFunc вызывается при смене URL общего документа комнаты
type DocumentFunc func(documentURL string)

// Coordinator связывает локальную рабочую область с комнатой.
//
// Публикации работают по принципу best-effort: ошибка сети пишется в
// лог и не блокирует локальный ввод. Удаленные штрихи применяются
// только к страницам, уже загруженным через ActivatePage; эхо
// собственных событий подавляется по uid актора.
type Coordinator struct {
	apiClient  httpClient.RoomAPI
	events     httpClient.EventSource
	viewport   Viewport
	strokes    StrokeSink
	roles      RoleSink
	gate       WriteGate
	onDocument DocumentFunc
	logger     *slog.Logger

	token   string
	roomID  string
	actorID string

	mu          gosync.Mutex
	maxSeq      map[int]int64
	primed      map[int]bool
	documentURL string
}

// Config задает зависимости координатора
type Config struct {
	APIClient  httpClient.RoomAPI
	Events     httpClient.EventSource
	Viewport   Viewport
	Strokes    StrokeSink
	Roles      RoleSink     // опционально
	Gate       WriteGate    // опционально; nil разрешает публикации
	OnDocument DocumentFunc // опционально
	Logger     *slog.Logger

	Token   string
	RoomID  string
	ActorID string
}

// NewCoordinator создает координатор синхронизации комнаты
func NewCoordinator(cfg Config) *Coordinator {
	return &Coordinator{
		apiClient:  cfg.APIClient,
		events:     cfg.Events,
		viewport:   cfg.Viewport,
		strokes:    cfg.Strokes,
		roles:      cfg.Roles,
		gate:       cfg.Gate,
		onDocument: cfg.OnDocument,
		logger:     cfg.Logger,
		token:      cfg.Token,
		roomID:     cfg.RoomID,
		actorID:    cfg.ActorID,
		maxSeq:     make(map[int]int64),
		primed:     make(map[int]bool),
	}
}

// Run подписывается на поток событий комнаты и применяет их до отмены
// контекста. При обрыве соединения подписка восстанавливается.
func (c *Coordinator) Run(ctx context.Context) error {
	for {
		events, err := c.events.SubscribeEvents(ctx, c.token, c.roomID)
		if err != nil {
			c.logger.Warn("event subscription failed", "room_id", c.roomID, "error", err)
		} else {
			c.logger.Info("subscribed to room events", "room_id", c.roomID)
			for ev := range events {
				c.handleEvent(ctx, ev)
			}
			c.logger.Warn("event stream closed", "room_id", c.roomID)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(resubscribeDelay):
		}
	}
}

// handleEvent применяет одно событие комнаты
func (c *Coordinator) handleEvent(ctx context.Context, ev api.Event) {
	switch ev.Type {
	case api.EventRoom:
		if ev.Room != nil {
			c.HandleRoomSnapshot(ctx, ev.Room)
		}
	case api.EventStroke:
		if ev.Record != nil {
			c.HandleStrokeRecord(ev.Record)
		}
	default:
		c.logger.Warn("unknown event type", "type", ev.Type)
	}
}

// HandleRoomSnapshot применяет снимок состояния комнаты: страницу,
// зум, шаблон бумаги, документ и роли. Поля, совпадающие с локальным
// состоянием, не трогаются; зум сравнивается с порогом ZoomEpsilon.
func (c *Coordinator) HandleRoomSnapshot(ctx context.Context, room *models.RoomState) {
	if room.Page > 0 && room.Page != c.viewport.CurrentPage() {
		c.ensurePage(ctx, room.Page)
		c.viewport.ApplyRemotePage(room.Page)
	}

	if room.Zoom > 0 && math.Abs(room.Zoom-c.viewport.CurrentZoom()) > ZoomEpsilon {
		c.viewport.ApplyRemoteZoom(room.Zoom)
	}

	if room.Paper.Valid() && room.Paper != c.viewport.CurrentPaper() {
		c.viewport.ApplyRemotePaper(room.Paper)
	}

	c.mu.Lock()
	documentChanged := room.DocumentURL != "" && room.DocumentURL != c.documentURL
	if documentChanged {
		c.documentURL = room.DocumentURL
	}
	c.mu.Unlock()

	if documentChanged && c.onDocument != nil {
		c.onDocument(room.DocumentURL)
	}

	if c.roles != nil {
		c.roles.UpdateRole(room)
	}
}

// HandleStrokeRecord применяет запись журнала штрихов из события.
// Эхо собственных штрихов подавляется по uid, но их Seq учитывается,
// чтобы повторная загрузка страницы не вернула дубликаты.
func (c *Coordinator) HandleStrokeRecord(rec *models.StrokeRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Страница еще не загружалась: записи придут при активации
	if !c.primed[rec.Page] {
		return
	}

	// Дубликат или уже примененная запись
	if rec.Seq <= c.maxSeq[rec.Page] {
		return
	}
	c.maxSeq[rec.Page] = rec.Seq

	// Собственное эхо: штрих уже в локальном хранилище
	if rec.UID == c.actorID {
		return
	}

	c.strokes.AppendRemote(rec.Page, rec.Stroke)
}

// ActivatePage загружает недостающие записи журнала страницы и
// применяет их к локальному хранилищу. Вызывается при входе в комнату
// и при каждом переходе на страницу.
func (c *Coordinator) ActivatePage(ctx context.Context, page int) error {
	c.mu.Lock()
	since := c.maxSeq[page]
	c.mu.Unlock()

	resp, err := c.apiClient.ListStrokes(ctx, c.token, c.roomID, page, since)
	if err != nil {
		return fmt.Errorf("failed to fetch strokes for page %d: %w", page, err)
	}

	for _, rec := range resp.Records {
		c.strokes.AppendRemote(rec.Page, rec.Stroke)
	}

	c.mu.Lock()
	c.primed[page] = true
	if resp.MaxSeq > c.maxSeq[page] {
		c.maxSeq[page] = resp.MaxSeq
	}
	c.mu.Unlock()

	c.logger.Debug("page activated",
		"room_id", c.roomID, "page", page, "fetched", len(resp.Records))
	return nil
}

// ensurePage подгружает журнал страницы перед удаленным переходом
func (c *Coordinator) ensurePage(ctx context.Context, page int) {
	c.mu.Lock()
	already := c.primed[page]
	c.mu.Unlock()
	if already {
		return
	}
	if err := c.ActivatePage(ctx, page); err != nil {
		c.logger.Warn("failed to activate page", "page", page, "error", err)
	}
}

// canPublish проверяет консультативный предикат записи
func (c *Coordinator) canPublish() bool {
	return c.gate == nil || c.gate.CanWrite()
}

// PublishStroke отправляет завершенный штрих в журнал комнаты.
// Seq назначается сервером; локальная запись Seq предотвращает
// повторное применение собственного эха. Для роли без права записи
// публикация пропускается: штрих уже закреплен локально.
func (c *Coordinator) PublishStroke(ctx context.Context, page int, stroke models.Stroke) error {
	if !c.canPublish() {
		c.logger.Debug("stroke publish skipped: role cannot write", "room_id", c.roomID)
		return nil
	}

	rec, err := c.apiClient.AppendStroke(ctx, c.token, c.roomID, api.AppendStrokeRequest{
		Stroke: stroke,
		Page:   page,
	})
	if err != nil {
		return fmt.Errorf("failed to publish stroke: %w", err)
	}

	c.mu.Lock()
	if rec.Seq > c.maxSeq[page] {
		c.maxSeq[page] = rec.Seq
	}
	c.mu.Unlock()

	return nil
}

// PublishViewport публикует локальное изменение поля состояния
// просмотра. Ошибки пишутся в лог и не прерывают работу: локальный
// ввод не должен зависеть от сети. Для роли без права записи
// изменение остается локальным.
func (c *Coordinator) PublishViewport(field string, value any) {
	if !c.canPublish() {
		c.logger.Debug("viewport publish skipped: role cannot write",
			"room_id", c.roomID, "field", field)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req api.PatchRoomRequest
	switch field {
	case "page":
		page, ok := value.(int)
		if !ok {
			c.logger.Warn("invalid page value", "value", value)
			return
		}
		req.Page = &page
	case "zoom":
		zoom, ok := value.(float64)
		if !ok {
			c.logger.Warn("invalid zoom value", "value", value)
			return
		}
		req.Zoom = &zoom
	case "paper":
		paper, ok := value.(models.PaperTemplate)
		if !ok {
			c.logger.Warn("invalid paper value", "value", value)
			return
		}
		req.Paper = &paper
	case "document_url":
		docURL, ok := value.(string)
		if !ok {
			c.logger.Warn("invalid document url value", "value", value)
			return
		}
		req.DocumentURL = &docURL
		c.mu.Lock()
		c.documentURL = docURL
		c.mu.Unlock()
	default:
		c.logger.Warn("unknown viewport field", "field", field)
		return
	}

	if _, err := c.apiClient.PatchRoom(ctx, c.token, c.roomID, req); err != nil {
		c.logger.Warn("failed to publish viewport change",
			"room_id", c.roomID, "field", field, "error", err)
	}
}

// MaxSeq возвращает наибольший примененный Seq страницы
func (c *Coordinator) MaxSeq(page int) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxSeq[page]
}

// RestoreSeq восстанавливает счетчики Seq из локального снимка
func (c *Coordinator) RestoreSeq(maxSeq map[int]int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for page, seq := range maxSeq {
		if seq > c.maxSeq[page] {
			c.maxSeq[page] = seq
		}
	}
}

// SeqSnapshot возвращает копию счетчиков Seq для сохранения
func (c *Coordinator) SeqSnapshot() map[int]int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[int]int64, len(c.maxSeq))
	for page, seq := range c.maxSeq {
		out[page] = seq
	}
	return out
}
