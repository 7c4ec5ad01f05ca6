package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// FileKind is derived once from the MIME type at upload and never changes.
type FileKind string

const (
	KindImage        FileKind = "image"
	KindText         FileKind = "text"
	KindCode         FileKind = "code"
	KindPdf          FileKind = "pdf"
	KindDocument     FileKind = "document"
	KindVideo        FileKind = "video"
	KindPresentation FileKind = "ppt"
	KindAudio        FileKind = "audio"
	KindUnknown      FileKind = "unknown"
)

// File is the metadata record for an uploaded blob. The record id doubles as
// the blob storage key.
type File struct {
	ID        string    `db:"id" json:"id"`
	OwnerID   string    `db:"owner_id" json:"-"`
	Name      string    `db:"name" json:"name"`
	Kind      FileKind  `db:"kind" json:"kind"`
	MimeType  string    `db:"mime_type" json:"mimeType"`
	Size      int64     `db:"size" json:"size"`
	FolderID  *string   `db:"folder_id" json:"folderId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
	Content   *string   `db:"content" json:"content,omitempty"`
	Summary   *string   `db:"summary" json:"summary,omitempty"`
	Tags      Tags      `db:"tags" json:"tags,omitempty"`
	IsStarred bool      `db:"is_starred" json:"isStarred"`
	IsTrashed bool      `db:"is_trashed" json:"isTrashed"`
}

// HasContent reports whether extracted text content is available for AI use.
func (f *File) HasContent() bool {
	return f.Content != nil && *f.Content != ""
}

// TextLike reports whether the file kind carries extractable text.
func (f *File) TextLike() bool {
	return f.Kind == KindText || f.Kind == KindCode
}

// Tags is a JSON-encoded string list column.
type Tags []string

func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return nil, nil
	}
	return json.Marshal(t)
}

func (t *Tags) Scan(src any) error {
	if src == nil {
		*t = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, t)
	case string:
		return json.Unmarshal([]byte(v), t)
	default:
		return fmt.Errorf("unsupported tags column type %T", src)
	}
}
