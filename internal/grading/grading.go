// Package grading оценивает ответ ученика через текстовую модель:
// запрос с заданием и ответом, ответ строго в JSON.
package grading

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL — эндпоинт generateContent по умолчанию
const DefaultBaseURL = "https://generativelanguage.googleapis.com"

// DefaultModel — модель по умолчанию
const DefaultModel = "gemini-1.5-flash"

// Request описывает одно задание на проверку
type Request struct {
	Question    string
	ModelAnswer string
	Answer      string
	Rubric      string
	MaxScore    float64
}

// Result — результат проверки. Score равен nil, когда модель не
// вернула разбираемый JSON; Feedback в этом случае содержит
// пояснение сбоя.
type Result struct {
	Score    *float64 `json:"score"`
	Feedback string   `json:"feedback"`
}

// Service вызывает модель и разбирает ее ответ
type Service struct {
	httpClient *http.Client
	baseURL    string
	model      string
	apiKey     string
}

// Option настраивает Service
type Option func(*Service)

// WithBaseURL переопределяет адрес эндпоинта (для тестов и прокси)
func WithBaseURL(u string) Option {
	return func(s *Service) { s.baseURL = strings.TrimRight(u, "/") }
}

// WithModel переопределяет модель
func WithModel(m string) Option {
	return func(s *Service) { s.model = m }
}

// NewService создает сервис проверки
func NewService(apiKey string, opts ...Option) *Service {
	s := &Service{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    DefaultBaseURL,
		model:      DefaultModel,
		apiKey:     apiKey,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// generateRequest — тело запроса generateContent
type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

// generateResponse — значимая часть ответа generateContent
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Grade отправляет задание на проверку и разбирает результат.
// Сетевые ошибки и не-2xx статусы возвращаются как error; ответ
// модели, не являющийся JSON, ошибкой не считается: Score=nil и
// пояснение в Feedback.
func (s *Service) Grade(ctx context.Context, req Request) (*Result, error) {
	if req.Question == "" || req.ModelAnswer == "" || req.Answer == "" {
		return nil, fmt.Errorf("question, model answer and student answer are required")
	}
	if req.MaxScore <= 0 {
		req.MaxScore = 10
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: s.buildPrompt(req)}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", s.baseURL, s.model, s.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("grading request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("grading request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var gen generateResponse
	if err := json.Unmarshal(respBody, &gen); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	text := ""
	if len(gen.Candidates) > 0 && len(gen.Candidates[0].Content.Parts) > 0 {
		text = gen.Candidates[0].Content.Parts[0].Text
	}

	return ParseResult(text), nil
}

// buildPrompt собирает инструкцию для модели
func (s *Service) buildPrompt(req Request) string {
	rubric := req.Rubric
	if rubric == "" {
		rubric = "none (grade on accuracy, reasoning and presentation)"
	}

	return fmt.Sprintf(`You are grading a student answer. Grade strictly by the rubric.
- Max score: %g
- Rubric: %s
- Reply with JSON only:
{"score": number, "feedback": "short review"}

Question: %s
Model answer: %s
Student answer: %s`,
		req.MaxScore, rubric, req.Question, req.ModelAnswer, req.Answer)
}

// ParseResult терпимо разбирает текст модели: JSON может быть
// обернут в markdown-ограждение или окружен пояснениями. Если JSON
// извлечь не удалось, возвращается результат без оценки.
func ParseResult(text string) *Result {
	candidate := strings.TrimSpace(text)

	// Снимаем markdown ограждение ```json ... ```
	if strings.HasPrefix(candidate, "```") {
		candidate = strings.TrimPrefix(candidate, "```json")
		candidate = strings.TrimPrefix(candidate, "```")
		candidate = strings.TrimSuffix(strings.TrimSpace(candidate), "```")
		candidate = strings.TrimSpace(candidate)
	}

	// Берем первый JSON-объект в тексте
	if start := strings.Index(candidate, "{"); start >= 0 {
		if end := strings.LastIndex(candidate, "}"); end > start {
			candidate = candidate[start : end+1]
		}
	}

	var result Result
	if err := json.Unmarshal([]byte(candidate), &result); err != nil {
		return &Result{Feedback: "failed to parse grading response"}
	}
	return &result
}
