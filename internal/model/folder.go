package model

import "time"

// Folder is a named container. ParentID of nil means the root. The hierarchy
// stays acyclic because folders are only ever created under an existing
// navigation target and are never re-parented.
type Folder struct {
	ID        string    `db:"id" json:"id"`
	OwnerID   string    `db:"owner_id" json:"-"`
	Name      string    `db:"name" json:"name"`
	ParentID  *string   `db:"parent_id" json:"parentId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	IsTrashed bool      `db:"is_trashed" json:"isTrashed"`
}
