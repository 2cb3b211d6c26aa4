package storage

import "errors"

// Common client storage errors
var (
	// ErrAuthNotFound indicates that no actor credentials exist
	ErrAuthNotFound = errors.New("authentication data not found")

	// ErrSnapshotNotFound indicates that no workspace snapshot exists for the room
	ErrSnapshotNotFound = errors.New("workspace snapshot not found")

	// ErrDocumentNotFound indicates that no cached document exists for the room
	ErrDocumentNotFound = errors.New("document not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
