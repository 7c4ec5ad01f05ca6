package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/nimbusdrive/nimbus/internal/model"
)

var (
	ErrFileNotFound = errors.New("file not found")
)

type FileRepository interface {
	Create(file *model.File) error
	ByID(ownerID, id string) (*model.File, error)
	AllByOwner(ownerID string) ([]model.File, error)
	ByFolder(ownerID string, folderID *string) ([]model.File, error)
	TrashedByOwner(ownerID string) ([]model.File, error)
	SetTrashed(ownerID, id string, trashed bool) error
	SetStarred(ownerID, id string, starred bool) error
	Rename(ownerID, id, name string) error
	SetAnalysis(ownerID, id string, summary string, tags model.Tags) error
	Delete(ownerID, id string) error
}

type fileRepository struct {
	db *sqlx.DB
}

func NewFileRepository(db *sqlx.DB) FileRepository {
	return &fileRepository{db: db}
}

func (r *fileRepository) Create(file *model.File) error {
	query := `INSERT INTO files (id, owner_id, name, kind, mime_type, size, folder_id, created_at, updated_at, content, summary, tags, is_starred, is_trashed)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.db.Exec(query,
		file.ID,
		file.OwnerID,
		file.Name,
		file.Kind,
		file.MimeType,
		file.Size,
		file.FolderID,
		file.CreatedAt,
		file.UpdatedAt,
		file.Content,
		file.Summary,
		file.Tags,
		file.IsStarred,
		file.IsTrashed,
	)

	return err
}

func (r *fileRepository) ByID(ownerID, id string) (*model.File, error) {
	file := &model.File{}
	query := `SELECT * FROM files WHERE owner_id = $1 AND id = $2`

	err := r.db.Get(file, query, ownerID, id)
	if err == sql.ErrNoRows {
		return nil, ErrFileNotFound
	}

	return file, err
}

func (r *fileRepository) AllByOwner(ownerID string) ([]model.File, error) {
	var files []model.File
	query := `SELECT * FROM files WHERE owner_id = $1 ORDER BY created_at ASC`

	err := r.db.Select(&files, query, ownerID)
	if err != nil {
		return nil, err
	}

	return files, nil
}

func (r *fileRepository) ByFolder(ownerID string, folderID *string) ([]model.File, error) {
	var files []model.File
	var err error

	if folderID == nil {
		query := `SELECT * FROM files WHERE owner_id = $1 AND folder_id IS NULL ORDER BY created_at ASC`
		err = r.db.Select(&files, query, ownerID)
	} else {
		query := `SELECT * FROM files WHERE owner_id = $1 AND folder_id = $2 ORDER BY created_at ASC`
		err = r.db.Select(&files, query, ownerID, *folderID)
	}
	if err != nil {
		return nil, err
	}

	return files, nil
}

func (r *fileRepository) TrashedByOwner(ownerID string) ([]model.File, error) {
	var files []model.File
	query := `SELECT * FROM files WHERE owner_id = $1 AND is_trashed = TRUE ORDER BY created_at ASC`

	err := r.db.Select(&files, query, ownerID)
	if err != nil {
		return nil, err
	}

	return files, nil
}

// SetTrashed flips the soft-delete flag. The update bumps updated_at so the
// Recent view reflects the change.
func (r *fileRepository) SetTrashed(ownerID, id string, trashed bool) error {
	query := `UPDATE files SET is_trashed = $1, updated_at = $2 WHERE owner_id = $3 AND id = $4`
	return r.exec(query, trashed, time.Now(), ownerID, id)
}

func (r *fileRepository) SetStarred(ownerID, id string, starred bool) error {
	query := `UPDATE files SET is_starred = $1, updated_at = $2 WHERE owner_id = $3 AND id = $4`
	return r.exec(query, starred, time.Now(), ownerID, id)
}

func (r *fileRepository) Rename(ownerID, id, name string) error {
	query := `UPDATE files SET name = $1, updated_at = $2 WHERE owner_id = $3 AND id = $4`
	return r.exec(query, name, time.Now(), ownerID, id)
}

func (r *fileRepository) SetAnalysis(ownerID, id string, summary string, tags model.Tags) error {
	query := `UPDATE files SET summary = $1, tags = $2, updated_at = $3 WHERE owner_id = $4 AND id = $5`
	return r.exec(query, summary, tags, time.Now(), ownerID, id)
}

func (r *fileRepository) Delete(ownerID, id string) error {
	query := `DELETE FROM files WHERE owner_id = $1 AND id = $2`
	return r.exec(query, ownerID, id)
}

func (r *fileRepository) exec(query string, args ...any) error {
	result, err := r.db.Exec(query, args...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrFileNotFound
	}

	return nil
}
