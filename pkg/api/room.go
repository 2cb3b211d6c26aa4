// Package api содержит транспортные типы HTTP/websocket API комнат.
package api

import (
	"time"

	"github.com/notelink/notelink/internal/models"
)

// ActorResponse представляет ответ на выдачу анонимного актора
type ActorResponse struct {
	ActorID     string `json:"actor_id"`     // UUID актора
	AccessToken string `json:"access_token"` // JWT access token
	ExpiresIn   int64  `json:"expires_in"`   // время жизни токена в секундах
}

// CreateRoomRequest представляет запрос на создание комнаты
type CreateRoomRequest struct {
	Page  int                  `json:"page"`
	Zoom  float64              `json:"zoom"`
	Paper models.PaperTemplate `json:"paper"`
}

// JoinRoomRequest представляет запрос на присоединение к комнате.
// Mode — параметр ссылки: view|edit|teacher.
type JoinRoomRequest struct {
	Mode string `json:"mode"`
}

// RoomResponse представляет документ комнаты
type RoomResponse struct {
	Room models.RoomState `json:"room"`
}

// PatchRoomRequest представляет пополевое обновление документа
// комнаты. Обновляются только присутствующие поля; каждое поле —
// last-writer-wins.
type PatchRoomRequest struct {
	Page        *int                  `json:"page,omitempty"`
	Zoom        *float64              `json:"zoom,omitempty"`
	Paper       *models.PaperTemplate `json:"paper,omitempty"`
	DocumentURL *string               `json:"document_url,omitempty"`
}

// AppendStrokeRequest представляет добавление штриха в журнал комнаты
type AppendStrokeRequest struct {
	Stroke models.Stroke `json:"stroke"`
	Page   int           `json:"page"`
}

// AppendStrokeResponse подтверждает добавление с серверным номером
type AppendStrokeResponse struct {
	Record models.StrokeRecord `json:"record"`
}

// ListStrokesResponse представляет упорядоченную выборку журнала
type ListStrokesResponse struct {
	Records []models.StrokeRecord `json:"records"`
	MaxSeq  int64                 `json:"max_seq"` // наибольший Seq страницы (0, если записей нет)
}

// DocumentResponse представляет ссылку на загруженный документ
type DocumentResponse struct {
	DocumentURL string `json:"document_url"`
}

// SubmissionRequest представляет сохранение результата проверки
type SubmissionRequest struct {
	Question    string   `json:"question"`
	ModelAnswer string   `json:"model_answer"`
	Answer      string   `json:"answer"`
	Feedback    string   `json:"feedback"`
	Mode        string   `json:"mode"` // review | auto
	Score       *float64 `json:"score"`
	MaxScore    float64  `json:"max_score"`
	Page        int      `json:"page"`
}

// SubmissionResponse подтверждает сохранение результата проверки
type SubmissionResponse struct {
	ID string `json:"id"`
}

// Типы событий websocket-подписки комнаты.
const (
	// EventRoom полный снимок документа комнаты после изменения
	EventRoom = "room"
	// EventStroke добавленная запись журнала штрихов
	EventStroke = "stroke"
)

// Event представляет конверт события подписки. Room заполнен для
// EventRoom, Record — для EventStroke.
type Event struct {
	Type   string               `json:"type"`
	Room   *models.RoomState    `json:"room,omitempty"`
	Record *models.StrokeRecord `json:"record,omitempty"`
	SentAt time.Time            `json:"sent_at"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // описание ошибки
	Message string `json:"message,omitempty"` // дополнительное сообщение
}
