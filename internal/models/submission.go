package models

import "time"

// Submission — сохраненный результат проверки ответа в комнате.
type Submission struct {
	CreatedAt   time.Time `json:"created_at"`
	ID          string    `json:"id"`
	RoomID      string    `json:"room_id"`
	UID         string    `json:"uid"`
	Question    string    `json:"question"`
	ModelAnswer string    `json:"model_answer"`
	Answer      string    `json:"answer"`
	Feedback    string    `json:"feedback"`
	Mode        string    `json:"mode"`   // review | auto
	Status      string    `json:"status"` // graded | returned
	Score       *float64  `json:"score"`
	MaxScore    float64   `json:"max_score"`
	Page        int       `json:"page"`
}

// SubmissionStatus возвращает статус по режиму возврата: auto
// сразу помечается возвращенным, review ждет учителя.
func SubmissionStatus(mode string) string {
	if mode == "auto" {
		return "returned"
	}
	return "graded"
}
