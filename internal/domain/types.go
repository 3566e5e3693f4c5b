package domain

import "time"

// UserID identifies the owner of a conversation. It is an opaque,
// client-supplied string; the service does not verify identity.
type UserID string

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

type Timestamp = time.Time
