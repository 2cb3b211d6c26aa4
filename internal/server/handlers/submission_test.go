package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notelink/notelink/pkg/api"
)

func submitRequest(t *testing.T, roomID string, req api.SubmissionRequest, actorID string) *http.Request {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)
	r := httptest.NewRequest(http.MethodPost, "/api/v1/rooms/"+roomID+"/submissions", bytes.NewReader(body))
	r.SetPathValue("id", roomID)
	return withActor(r, actorID)
}

func TestRoomHandler_SubmitGrade(t *testing.T) {
	store := newMemStore()
	store.addRoom("ab12cd", teacherMembers("actor-owner"))
	handler, _ := newTestRoomHandler(store)

	score := 8.5
	w := httptest.NewRecorder()
	handler.SubmitGrade(w, submitRequest(t, "ab12cd", api.SubmissionRequest{
		Question:    "What is 2+2?",
		ModelAnswer: "4",
		Answer:      "4",
		Feedback:    "correct",
		Mode:        "auto",
		Score:       &score,
		MaxScore:    10,
		Page:        1,
	}, "actor-student"))

	require.Equal(t, http.StatusCreated, w.Code)

	var resp api.SubmissionResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.NotEmpty(t, resp.ID)

	subs, err := store.ListSubmissions(t.Context(), "ab12cd")
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "actor-student", subs[0].UID)
	assert.Equal(t, "returned", subs[0].Status)
	require.NotNil(t, subs[0].Score)
	assert.InDelta(t, 8.5, *subs[0].Score, 0.0001)
}

func TestRoomHandler_SubmitGrade_ReviewMode(t *testing.T) {
	store := newMemStore()
	store.addRoom("ab12cd", teacherMembers("actor-owner"))
	handler, _ := newTestRoomHandler(store)

	w := httptest.NewRecorder()
	handler.SubmitGrade(w, submitRequest(t, "ab12cd", api.SubmissionRequest{
		Question: "Explain photosynthesis",
		Answer:   "plants eat light",
		Mode:     "review",
		MaxScore: 10,
	}, "actor-student"))

	require.Equal(t, http.StatusCreated, w.Code)

	subs, err := store.ListSubmissions(t.Context(), "ab12cd")
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "graded", subs[0].Status)
	assert.Nil(t, subs[0].Score)
}

func TestRoomHandler_SubmitGrade_Invalid(t *testing.T) {
	store := newMemStore()
	store.addRoom("ab12cd", teacherMembers("actor-owner"))
	handler, _ := newTestRoomHandler(store)

	tests := []struct {
		name string
		req  api.SubmissionRequest
	}{
		{name: "missing question", req: api.SubmissionRequest{Mode: "auto"}},
		{name: "unknown mode", req: api.SubmissionRequest{Question: "q", Mode: "instant"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.SubmitGrade(w, submitRequest(t, "ab12cd", tt.req, "actor-student"))
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestRoomHandler_SubmitGrade_RoomNotFound(t *testing.T) {
	store := newMemStore()
	handler, _ := newTestRoomHandler(store)

	w := httptest.NewRecorder()
	handler.SubmitGrade(w, submitRequest(t, "zz99zz", api.SubmissionRequest{
		Question: "q",
		Mode:     "auto",
	}, "actor-student"))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
