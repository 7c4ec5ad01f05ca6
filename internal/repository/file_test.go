package repository

import (
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbusdrive/nimbus/internal/model"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var fileColumns = []string{
	"id", "owner_id", "name", "kind", "mime_type", "size", "folder_id",
	"created_at", "updated_at", "content", "summary", "tags", "is_starred", "is_trashed",
}

func fileRow(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(fileColumns).
		AddRow("file-1", "owner-1", "notes.md", "text", "text/markdown", 42, nil,
			now, now, "# hi", "a summary", `["notes"]`, false, false)
}

func TestFileRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFileRepository(db)

	mock.ExpectExec("INSERT INTO files").
		WithArgs("file-1", "owner-1", "notes.md", model.KindText, "text/markdown", int64(42),
			nil, sqlmock.AnyArg(), sqlmock.AnyArg(), nil, nil, model.Tags(nil), false, false).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Create(&model.File{
		ID:       "file-1",
		OwnerID:  "owner-1",
		Name:     "notes.md",
		Kind:     model.KindText,
		MimeType: "text/markdown",
		Size:     42,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFileRepositoryByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFileRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM files WHERE owner_id = $1 AND id = $2`)).
		WithArgs("owner-1", "file-1").
		WillReturnRows(fileRow(now))

	file, err := repo.ByID("owner-1", "file-1")
	require.NoError(t, err)
	assert.Equal(t, "notes.md", file.Name)
	assert.Equal(t, model.Tags{"notes"}, file.Tags)
	require.NotNil(t, file.Summary)
	assert.Equal(t, "a summary", *file.Summary)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFileRepositoryByIDNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFileRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM files WHERE owner_id = $1 AND id = $2`)).
		WithArgs("owner-1", "nope").
		WillReturnRows(sqlmock.NewRows(fileColumns))

	_, err := repo.ByID("owner-1", "nope")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestFileRepositoryByFolderRootUsesIsNull(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFileRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM files WHERE owner_id = $1 AND folder_id IS NULL ORDER BY created_at ASC`)).
		WithArgs("owner-1").
		WillReturnRows(fileRow(time.Now()))

	files, err := repo.ByFolder("owner-1", nil)
	require.NoError(t, err)
	assert.Len(t, files, 1)

	folderID := "folder-1"
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM files WHERE owner_id = $1 AND folder_id = $2 ORDER BY created_at ASC`)).
		WithArgs("owner-1", "folder-1").
		WillReturnRows(sqlmock.NewRows(fileColumns))

	files, err = repo.ByFolder("owner-1", &folderID)
	require.NoError(t, err)
	assert.Empty(t, files)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFileRepositorySetTrashed(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFileRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE files SET is_trashed = $1, updated_at = $2 WHERE owner_id = $3 AND id = $4`)).
		WithArgs(true, sqlmock.AnyArg(), "owner-1", "file-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetTrashed("owner-1", "file-1", true))

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE files SET is_trashed = $1, updated_at = $2 WHERE owner_id = $3 AND id = $4`)).
		WithArgs(false, sqlmock.AnyArg(), "owner-1", "gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetTrashed("owner-1", "gone", false)
	assert.ErrorIs(t, err, ErrFileNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFileRepositorySetAnalysis(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFileRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE files SET summary = $1, tags = $2, updated_at = $3 WHERE owner_id = $4 AND id = $5`)).
		WithArgs("a summary", model.Tags{"a", "b"}, sqlmock.AnyArg(), "owner-1", "file-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SetAnalysis("owner-1", "file-1", "a summary", model.Tags{"a", "b"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFileRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFileRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM files WHERE owner_id = $1 AND id = $2`)).
		WithArgs("owner-1", "file-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete("owner-1", "file-1"))

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM files WHERE owner_id = $1 AND id = $2`)).
		WithArgs("owner-2", "file-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete("owner-2", "file-1")
	assert.ErrorIs(t, err, ErrFileNotFound)
}
