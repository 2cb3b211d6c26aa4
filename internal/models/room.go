package models

import "time"

// Tool активный инструмент локального актора.
type Tool string

const (
	ToolPen    Tool = "pen"
	ToolEraser Tool = "eraser"
	ToolHand   Tool = "hand"
)

// DrawsInk возвращает true, если инструмент оставляет чернила.
func (t Tool) DrawsInk() bool {
	return t == ToolPen || t == ToolEraser
}

// StrokeMode возвращает режим штриха для рисующего инструмента.
func (t Tool) StrokeMode() StrokeMode {
	if t == ToolEraser {
		return StrokeModeEraser
	}
	return StrokeModePen
}

// PaperTemplate задает фон страницы: исходный документ или бланк.
type PaperTemplate string

const (
	// PaperSource страница исходного документа (PDF и т.п.)
	PaperSource PaperTemplate = "source"
	// PaperPlain чистый лист
	PaperPlain PaperTemplate = "plain"
	// PaperRuled линованный лист (интервал 28px)
	PaperRuled PaperTemplate = "ruled"
	// PaperGrid клетка (16px)
	PaperGrid PaperTemplate = "grid"
	// PaperGenkou рукописная сетка генкоёси (24px)
	PaperGenkou PaperTemplate = "genkou"
)

// Valid проверяет, что значение шаблона известно.
func (p PaperTemplate) Valid() bool {
	switch p {
	case PaperSource, PaperPlain, PaperRuled, PaperGrid, PaperGenkou:
		return true
	}
	return false
}

// Role роль участника комнаты.
type Role string

const (
	RoleTeacher Role = "teacher"
	RoleEditor  Role = "editor"
	RoleViewer  Role = "viewer"
)

// CanWrite возвращает true для ролей, которым разрешены записи
// в общее состояние комнаты. Проверка локально консультативная;
// авторитетная проверка выполняется сервером.
func (r Role) CanWrite() bool {
	return r == RoleTeacher || r == RoleEditor
}

// RoleForMode преобразует mode-параметр ссылки (view|edit|teacher)
// в запрашиваемую роль. Неизвестные значения дают RoleViewer.
func RoleForMode(mode string) Role {
	switch mode {
	case "teacher":
		return RoleTeacher
	case "edit":
		return RoleEditor
	case "view":
		return RoleViewer
	}
	return RoleViewer
}

// Member участник комнаты.
type Member struct {
	JoinedAt time.Time `json:"joined_at"` // JoinedAt время присоединения
	Role     Role      `json:"role"`      // Role роль участника
}

// RoomState общий документ комнаты. Канонический экземпляр хранится
// на сервере; каждое поле обновляется по принципу last-writer-wins.
type RoomState struct {
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	Members     map[string]Member `json:"members"` // Members uid -> участник
	ID          string            `json:"id"`      // ID короткий идентификатор комнаты
	CreatedBy   string            `json:"created_by"`
	DocumentURL string            `json:"document_url,omitempty"` // DocumentURL ссылка на общий документ, "" если нет
	Paper       PaperTemplate     `json:"paper"`
	Zoom        float64           `json:"zoom"`
	Page        int               `json:"page"`
}

// MemberRole возвращает роль участника по uid.
// Для неизвестного uid возвращает RoleViewer и false.
func (r *RoomState) MemberRole(uid string) (Role, bool) {
	m, ok := r.Members[uid]
	if !ok {
		return RoleViewer, false
	}
	return m.Role, true
}

// StrokeRecord запись в append-only журнале штрихов комнаты.
// Записи не редактируются и не удаляются; порядок воспроизведения
// определяется Seq, назначаемым сервером.
type StrokeRecord struct {
	CreatedAt time.Time `json:"created_at"` // CreatedAt серверная метка времени
	UID       string    `json:"uid"`        // UID автор штриха
	Stroke    Stroke    `json:"stroke"`
	Seq       int64     `json:"seq"`  // Seq монотонный порядковый номер
	Page      int       `json:"page"` // Page страница, к которой относится штрих
}
