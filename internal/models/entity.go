package models

import "time"

// Entity is a document whose identity is assigned by the backend.
type Entity interface {
	GetID() string
	SetID(id string)
	GetCreatedAt() int64
	SetCreatedAt(ms int64)
	GetUpdatedAt() int64
	SetUpdatedAt(ms int64)
	// Fields returns the editable fields keyed by their stored names.
	Fields() map[string]interface{}
}

// NowMillis returns the caller-side timestamp used for ordering.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
