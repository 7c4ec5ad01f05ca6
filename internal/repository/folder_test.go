package repository

import (
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbusdrive/nimbus/internal/model"
)

var folderColumns = []string{"id", "owner_id", "name", "parent_id", "created_at", "is_trashed"}

func TestFolderRepositoryCreateAndByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFolderRepository(db)
	now := time.Now()

	mock.ExpectExec("INSERT INTO folders").
		WithArgs("folder-1", "owner-1", "Documents", nil, sqlmock.AnyArg(), false).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Create(&model.Folder{
		ID:        "folder-1",
		OwnerID:   "owner-1",
		Name:      "Documents",
		CreatedAt: now,
	})
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM folders WHERE owner_id = $1 AND id = $2`)).
		WithArgs("owner-1", "folder-1").
		WillReturnRows(sqlmock.NewRows(folderColumns).
			AddRow("folder-1", "owner-1", "Documents", nil, now, false))

	folder, err := repo.ByID("owner-1", "folder-1")
	require.NoError(t, err)
	assert.Equal(t, "Documents", folder.Name)
	assert.Nil(t, folder.ParentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFolderRepositoryRootCount(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFolderRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM folders WHERE owner_id = $1 AND parent_id IS NULL`)).
		WithArgs("owner-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.RootCount("owner-1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestFolderRepositorySetTrashedNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFolderRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE folders SET is_trashed = $1 WHERE owner_id = $2 AND id = $3`)).
		WithArgs(true, "owner-1", "gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetTrashed("owner-1", "gone", true)
	assert.ErrorIs(t, err, ErrFolderNotFound)
}

func TestFolderRepositoryTrashedByOwner(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFolderRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM folders WHERE owner_id = $1 AND is_trashed = TRUE ORDER BY created_at ASC`)).
		WithArgs("owner-1").
		WillReturnRows(sqlmock.NewRows(folderColumns).
			AddRow("folder-2", "owner-1", "Old", nil, time.Now(), true))

	folders, err := repo.TrashedByOwner("owner-1")
	require.NoError(t, err)
	require.Len(t, folders, 1)
	assert.True(t, folders[0].IsTrashed)
}
