package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/notelink/notelink/internal/client/storage"
)

// SaveSnapshot stores or replaces the workspace snapshot for a room
func (s *Storage) SaveSnapshot(ctx context.Context, snapshot *storage.Snapshot) error {
	if snapshot.RoomID == "" {
		return fmt.Errorf("snapshot room id is empty")
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketWorkspaces)
		if bucket == nil {
			return fmt.Errorf("workspaces bucket not found")
		}

		// Сериализуем снимок в JSON
		data, err := json.Marshal(snapshot)
		if err != nil {
			return fmt.Errorf("failed to marshal snapshot: %w", err)
		}

		// Сохраняем по id комнаты
		if err := bucket.Put([]byte(snapshot.RoomID), data); err != nil {
			return fmt.Errorf("failed to save snapshot: %w", err)
		}

		return nil
	})
}

// GetSnapshot retrieves the workspace snapshot for a room
func (s *Storage) GetSnapshot(ctx context.Context, roomID string) (*storage.Snapshot, error) {
	var snapshot *storage.Snapshot

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketWorkspaces)
		if bucket == nil {
			return fmt.Errorf("workspaces bucket not found")
		}

		data := bucket.Get([]byte(roomID))
		if data == nil {
			return storage.ErrSnapshotNotFound
		}

		snapshot = &storage.Snapshot{}
		if err := json.Unmarshal(data, snapshot); err != nil {
			return fmt.Errorf("failed to unmarshal snapshot: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return snapshot, nil
}

// DeleteSnapshot removes the workspace snapshot for a room
func (s *Storage) DeleteSnapshot(ctx context.Context, roomID string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketWorkspaces)
		if bucket == nil {
			return fmt.Errorf("workspaces bucket not found")
		}

		if bucket.Get([]byte(roomID)) == nil {
			return storage.ErrSnapshotNotFound
		}

		if err := bucket.Delete([]byte(roomID)); err != nil {
			return fmt.Errorf("failed to delete snapshot: %w", err)
		}

		return nil
	})
}

// ListRooms returns ids of rooms with stored snapshots
func (s *Storage) ListRooms(ctx context.Context) ([]string, error) {
	var rooms []string

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketWorkspaces)
		if bucket == nil {
			return fmt.Errorf("workspaces bucket not found")
		}

		return bucket.ForEach(func(k, v []byte) error {
			rooms = append(rooms, string(k))
			return nil
		})
	})

	if err != nil {
		return nil, err
	}

	return rooms, nil
}

// SaveDocument stores document bytes for a room
func (s *Storage) SaveDocument(ctx context.Context, roomID string, data []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketDocuments)
		if bucket == nil {
			return fmt.Errorf("documents bucket not found")
		}

		if err := bucket.Put([]byte(roomID), data); err != nil {
			return fmt.Errorf("failed to save document: %w", err)
		}

		return nil
	})
}

// GetDocument retrieves cached document bytes for a room
func (s *Storage) GetDocument(ctx context.Context, roomID string) ([]byte, error) {
	var data []byte

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketDocuments)
		if bucket == nil {
			return fmt.Errorf("documents bucket not found")
		}

		stored := bucket.Get([]byte(roomID))
		if stored == nil {
			return storage.ErrDocumentNotFound
		}

		// Копируем: байты bbolt валидны только внутри транзакции
		data = make([]byte, len(stored))
		copy(data, stored)

		return nil
	})

	if err != nil {
		return nil, err
	}

	return data, nil
}

// DeleteDocument removes cached document bytes for a room
func (s *Storage) DeleteDocument(ctx context.Context, roomID string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketDocuments)
		if bucket == nil {
			return fmt.Errorf("documents bucket not found")
		}

		if bucket.Get([]byte(roomID)) == nil {
			return storage.ErrDocumentNotFound
		}

		if err := bucket.Delete([]byte(roomID)); err != nil {
			return fmt.Errorf("failed to delete document: %w", err)
		}

		return nil
	})
}
