package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/nimbusdrive/nimbus/internal/model"
)

var (
	ErrFolderNotFound = errors.New("folder not found")
)

type FolderRepository interface {
	Create(folder *model.Folder) error
	ByID(ownerID, id string) (*model.Folder, error)
	AllByOwner(ownerID string) ([]model.Folder, error)
	TrashedByOwner(ownerID string) ([]model.Folder, error)
	RootCount(ownerID string) (int, error)
	SetTrashed(ownerID, id string, trashed bool) error
	Delete(ownerID, id string) error
}

type folderRepository struct {
	db *sqlx.DB
}

func NewFolderRepository(db *sqlx.DB) FolderRepository {
	return &folderRepository{db: db}
}

func (r *folderRepository) Create(folder *model.Folder) error {
	query := `INSERT INTO folders (id, owner_id, name, parent_id, created_at, is_trashed)
	          VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(query,
		folder.ID,
		folder.OwnerID,
		folder.Name,
		folder.ParentID,
		folder.CreatedAt,
		folder.IsTrashed,
	)

	return err
}

func (r *folderRepository) ByID(ownerID, id string) (*model.Folder, error) {
	folder := &model.Folder{}
	query := `SELECT * FROM folders WHERE owner_id = $1 AND id = $2`

	err := r.db.Get(folder, query, ownerID, id)
	if err == sql.ErrNoRows {
		return nil, ErrFolderNotFound
	}

	return folder, err
}

func (r *folderRepository) AllByOwner(ownerID string) ([]model.Folder, error) {
	var folders []model.Folder
	query := `SELECT * FROM folders WHERE owner_id = $1 ORDER BY created_at ASC`

	err := r.db.Select(&folders, query, ownerID)
	if err != nil {
		return nil, err
	}

	return folders, nil
}

func (r *folderRepository) TrashedByOwner(ownerID string) ([]model.Folder, error) {
	var folders []model.Folder
	query := `SELECT * FROM folders WHERE owner_id = $1 AND is_trashed = TRUE ORDER BY created_at ASC`

	err := r.db.Select(&folders, query, ownerID)
	if err != nil {
		return nil, err
	}

	return folders, nil
}

// RootCount counts root-level folders regardless of trash state. Seeding
// checks this so default folders are created at most once per owner.
func (r *folderRepository) RootCount(ownerID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM folders WHERE owner_id = $1 AND parent_id IS NULL`

	err := r.db.Get(&count, query, ownerID)
	return count, err
}

func (r *folderRepository) SetTrashed(ownerID, id string, trashed bool) error {
	query := `UPDATE folders SET is_trashed = $1 WHERE owner_id = $2 AND id = $3`

	result, err := r.db.Exec(query, trashed, ownerID, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrFolderNotFound
	}

	return nil
}

func (r *folderRepository) Delete(ownerID, id string) error {
	query := `DELETE FROM folders WHERE owner_id = $1 AND id = $2`

	result, err := r.db.Exec(query, ownerID, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrFolderNotFound
	}

	return nil
}
