package storage

import "errors"

// Common storage errors
var (
	// ErrRoomNotFound indicates that room was not found in storage
	ErrRoomNotFound = errors.New("room not found")

	// ErrRoomAlreadyExists indicates that room with this id already exists
	ErrRoomAlreadyExists = errors.New("room already exists")

	// ErrMemberNotFound indicates that actor is not a member of the room
	ErrMemberNotFound = errors.New("member not found")

	// ErrDocumentNotFound indicates that room has no uploaded document
	ErrDocumentNotFound = errors.New("document not found")
)
