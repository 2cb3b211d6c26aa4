package boltdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notelink/notelink/internal/client/storage"
	"github.com/notelink/notelink/internal/models"
)

func TestStorage_SaveGetSnapshot(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	snapshot := &storage.Snapshot{
		RoomID: "ab12cd",
		Page:   3,
		Zoom:   1.5,
		Tool:   models.ToolEraser,
		Paper:  models.PaperGrid,
		Strokes: map[int][]models.Stroke{
			1: {
				{
					Mode:   models.StrokeModePen,
					Color:  "#111111",
					Size:   3,
					Points: []models.Point{{XN: 0.1, YN: 0.2}, {XN: 0.3, YN: 0.4}},
				},
			},
			3: {
				{
					Mode:   models.StrokeModeEraser,
					Size:   24,
					Points: []models.Point{{XN: 0.5, YN: 0.5}},
				},
			},
		},
		MaxSeq:  map[int]int64{1: 10, 3: 4},
		SavedAt: time.Now().UTC().Truncate(time.Second),
	}

	// До сохранения снимка нет
	_, err := store.GetSnapshot(ctx, "ab12cd")
	assert.ErrorIs(t, err, storage.ErrSnapshotNotFound)

	// Сохраняем и читаем обратно
	require.NoError(t, store.SaveSnapshot(ctx, snapshot))

	got, err := store.GetSnapshot(ctx, "ab12cd")
	require.NoError(t, err)
	assert.Equal(t, snapshot.Page, got.Page)
	assert.Equal(t, snapshot.Zoom, got.Zoom)
	assert.Equal(t, snapshot.Tool, got.Tool)
	assert.Equal(t, snapshot.Paper, got.Paper)
	require.Len(t, got.Strokes[1], 1)
	assert.Equal(t, snapshot.Strokes[1][0].Points, got.Strokes[1][0].Points)
	assert.Equal(t, int64(10), got.MaxSeq[1])
	assert.Equal(t, int64(4), got.MaxSeq[3])
}

func TestStorage_SaveSnapshot_EmptyRoomID(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	err := store.SaveSnapshot(ctx, &storage.Snapshot{})
	assert.Error(t, err)
}

func TestStorage_SaveSnapshot_Replaces(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	require.NoError(t, store.SaveSnapshot(ctx, &storage.Snapshot{RoomID: "ab12cd", Page: 1}))
	require.NoError(t, store.SaveSnapshot(ctx, &storage.Snapshot{RoomID: "ab12cd", Page: 7}))

	got, err := store.GetSnapshot(ctx, "ab12cd")
	require.NoError(t, err)
	assert.Equal(t, 7, got.Page)
}

func TestStorage_DeleteSnapshot(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	require.NoError(t, store.SaveSnapshot(ctx, &storage.Snapshot{RoomID: "ab12cd"}))
	require.NoError(t, store.DeleteSnapshot(ctx, "ab12cd"))

	_, err := store.GetSnapshot(ctx, "ab12cd")
	assert.ErrorIs(t, err, storage.ErrSnapshotNotFound)

	err = store.DeleteSnapshot(ctx, "ab12cd")
	assert.ErrorIs(t, err, storage.ErrSnapshotNotFound)
}

func TestStorage_ListRooms(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	rooms, err := store.ListRooms(ctx)
	require.NoError(t, err)
	assert.Empty(t, rooms)

	require.NoError(t, store.SaveSnapshot(ctx, &storage.Snapshot{RoomID: "aaa111"}))
	require.NoError(t, store.SaveSnapshot(ctx, &storage.Snapshot{RoomID: "bbb222"}))

	rooms, err = store.ListRooms(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"aaa111", "bbb222"}, rooms)
}

func TestStorage_SaveGetDeleteDocument(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	payload := []byte("%PDF-1.4 fake document")

	_, err := store.GetDocument(ctx, "ab12cd")
	assert.ErrorIs(t, err, storage.ErrDocumentNotFound)

	require.NoError(t, store.SaveDocument(ctx, "ab12cd", payload))

	got, err := store.GetDocument(ctx, "ab12cd")
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	require.NoError(t, store.DeleteDocument(ctx, "ab12cd"))

	_, err = store.GetDocument(ctx, "ab12cd")
	assert.ErrorIs(t, err, storage.ErrDocumentNotFound)

	err = store.DeleteDocument(ctx, "ab12cd")
	assert.ErrorIs(t, err, storage.ErrDocumentNotFound)
}
