// Package api содержит HTTP клиент бэкенда комнат.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/notelink/notelink/internal/models"
	"github.com/notelink/notelink/pkg/api"
)

// RoomAPI определяет операции бэкенда комнат, используемые клиентом.
type RoomAPI interface {
	// Authenticate выдает анонимного актора с токеном доступа
	Authenticate(ctx context.Context) (*api.ActorResponse, error)

	// CreateRoom создает комнату, инициатор становится учителем
	CreateRoom(ctx context.Context, token string, req api.CreateRoomRequest) (*models.RoomState, error)

	// JoinRoom добавляет актора в комнату с запрошенной ролью
	JoinRoom(ctx context.Context, token, roomID string, req api.JoinRoomRequest) (*models.RoomState, error)

	// GetRoom возвращает документ комнаты
	GetRoom(ctx context.Context, token, roomID string) (*models.RoomState, error)

	// PatchRoom выполняет пополевое обновление документа комнаты
	PatchRoom(ctx context.Context, token, roomID string, req api.PatchRoomRequest) (*models.RoomState, error)

	// AppendStroke добавляет штрих в append-only журнал комнаты
	AppendStroke(ctx context.Context, token, roomID string, req api.AppendStrokeRequest) (*models.StrokeRecord, error)

	// ListStrokes возвращает записи журнала страницы с Seq > since
	ListStrokes(ctx context.Context, token, roomID string, page int, since int64) (*api.ListStrokesResponse, error)

	// UploadDocument загружает байты общего документа
	UploadDocument(ctx context.Context, token, roomID string, data []byte) (*api.DocumentResponse, error)

	// DownloadDocument скачивает байты общего документа по URL
	DownloadDocument(ctx context.Context, token, documentURL string) ([]byte, error)

	// SubmitGrade сохраняет результат проверки в комнате
	SubmitGrade(ctx context.Context, token, roomID string, req api.SubmissionRequest) (*api.SubmissionResponse, error)
}

// Client представляет HTTP клиент для взаимодействия с сервером комнат
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient создает новый API клиент
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			// Настройка обработки редиректов
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Ограничиваем количество редиректов
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовок Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

// Authenticate выдает анонимного актора
func (c *Client) Authenticate(ctx context.Context) (*api.ActorResponse, error) {
	var resp api.ActorResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/anon", "", nil, &resp); err != nil {
		return nil, fmt.Errorf("auth request failed: %w", err)
	}
	return &resp, nil
}

// CreateRoom создает новую комнату
func (c *Client) CreateRoom(ctx context.Context, token string, req api.CreateRoomRequest) (*models.RoomState, error) {
	var resp api.RoomResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/rooms", token, req, &resp); err != nil {
		return nil, fmt.Errorf("create room request failed: %w", err)
	}
	return &resp.Room, nil
}

// JoinRoom присоединяет актора к комнате
func (c *Client) JoinRoom(ctx context.Context, token, roomID string, req api.JoinRoomRequest) (*models.RoomState, error) {
	var resp api.RoomResponse
	path := fmt.Sprintf("/api/v1/rooms/%s/join", url.PathEscape(roomID))
	if err := c.doRequest(ctx, http.MethodPost, path, token, req, &resp); err != nil {
		return nil, fmt.Errorf("join room request failed: %w", err)
	}
	return &resp.Room, nil
}

// GetRoom возвращает документ комнаты
func (c *Client) GetRoom(ctx context.Context, token, roomID string) (*models.RoomState, error) {
	var resp api.RoomResponse
	path := fmt.Sprintf("/api/v1/rooms/%s", url.PathEscape(roomID))
	if err := c.doRequest(ctx, http.MethodGet, path, token, nil, &resp); err != nil {
		return nil, fmt.Errorf("get room request failed: %w", err)
	}
	return &resp.Room, nil
}

// PatchRoom выполняет пополевое обновление документа комнаты
func (c *Client) PatchRoom(ctx context.Context, token, roomID string, req api.PatchRoomRequest) (*models.RoomState, error) {
	var resp api.RoomResponse
	path := fmt.Sprintf("/api/v1/rooms/%s", url.PathEscape(roomID))
	if err := c.doRequest(ctx, http.MethodPatch, path, token, req, &resp); err != nil {
		return nil, fmt.Errorf("patch room request failed: %w", err)
	}
	return &resp.Room, nil
}

// AppendStroke добавляет штрих в журнал комнаты
func (c *Client) AppendStroke(ctx context.Context, token, roomID string, req api.AppendStrokeRequest) (*models.StrokeRecord, error) {
	var resp api.AppendStrokeResponse
	path := fmt.Sprintf("/api/v1/rooms/%s/strokes", url.PathEscape(roomID))
	if err := c.doRequest(ctx, http.MethodPost, path, token, req, &resp); err != nil {
		return nil, fmt.Errorf("append stroke request failed: %w", err)
	}
	return &resp.Record, nil
}

// ListStrokes возвращает записи журнала страницы с Seq > since
func (c *Client) ListStrokes(ctx context.Context, token, roomID string, page int, since int64) (*api.ListStrokesResponse, error) {
	var resp api.ListStrokesResponse
	path := fmt.Sprintf("/api/v1/rooms/%s/strokes?page=%d&since=%s",
		url.PathEscape(roomID), page, strconv.FormatInt(since, 10))
	if err := c.doRequest(ctx, http.MethodGet, path, token, nil, &resp); err != nil {
		return nil, fmt.Errorf("list strokes request failed: %w", err)
	}
	return &resp, nil
}

// UploadDocument загружает байты общего документа комнаты
func (c *Client) UploadDocument(ctx context.Context, token, roomID string, data []byte) (*api.DocumentResponse, error) {
	path := fmt.Sprintf("/api/v1/rooms/%s/document", url.PathEscape(roomID))

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	respBody, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("upload document request failed: %w", err)
	}

	var resp api.DocumentResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &resp, nil
}

// DownloadDocument скачивает байты общего документа. documentURL
// может быть абсолютным или путем относительно базового URL.
func (c *Client) DownloadDocument(ctx context.Context, token, documentURL string) ([]byte, error) {
	target := documentURL
	if strings.HasPrefix(target, "/") {
		target = c.baseURL + target
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	data, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("download document request failed: %w", err)
	}
	return data, nil
}

// SubmitGrade сохраняет результат проверки
func (c *Client) SubmitGrade(ctx context.Context, token, roomID string, req api.SubmissionRequest) (*api.SubmissionResponse, error) {
	var resp api.SubmissionResponse
	path := fmt.Sprintf("/api/v1/rooms/%s/submissions", url.PathEscape(roomID))
	if err := c.doRequest(ctx, http.MethodPost, path, token, req, &resp); err != nil {
		return nil, fmt.Errorf("submit grade request failed: %w", err)
	}
	return &resp, nil
}

// doRequest выполняет JSON HTTP запрос
func (c *Client) doRequest(ctx context.Context, method, path, token string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	respBody, err := c.do(req)
	if err != nil {
		return err
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// do выполняет запрос и возвращает тело успешного ответа
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	// Проверяем статус код
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			return nil, fmt.Errorf("server error (%d): %s", resp.StatusCode, errResp.Error)
		}
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}
