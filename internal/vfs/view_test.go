package vfs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbusdrive/nimbus/internal/model"
)

func strPtr(s string) *string { return &s }

func testRecords() ([]model.File, []model.Folder) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	files := []model.File{
		{ID: "f1", Name: "notes.md", Size: 100, UpdatedAt: base},
		{ID: "f2", Name: "photo.png", Size: 200, UpdatedAt: base.Add(2 * time.Hour), IsStarred: true},
		{ID: "f3", Name: "report.pdf", Size: 300, UpdatedAt: base.Add(1 * time.Hour), FolderID: strPtr("d1")},
		{ID: "f4", Name: "old.txt", Size: 400, UpdatedAt: base.Add(3 * time.Hour), IsTrashed: true},
		{ID: "f5", Name: "starred-trashed.txt", Size: 500, UpdatedAt: base, IsStarred: true, IsTrashed: true},
	}
	folders := []model.Folder{
		{ID: "d1", Name: "Documents"},
		{ID: "d2", Name: "Images"},
		{ID: "d3", Name: "Old", IsTrashed: true},
		{ID: "d4", Name: "Nested", ParentID: strPtr("d1")},
	}
	return files, folders
}

func fileIDs(files []model.File) []string {
	ids := make([]string, len(files))
	for i, f := range files {
		ids[i] = f.ID
	}
	return ids
}

func folderIDs(folders []model.Folder) []string {
	ids := make([]string, len(folders))
	for i, f := range folders {
		ids[i] = f.ID
	}
	return ids
}

func TestProjectDriveRoot(t *testing.T) {
	files, folders := testRecords()

	gotFiles, gotFolders := Project(files, folders, ViewDrive, nil)

	assert.Equal(t, []string{"f1", "f2"}, fileIDs(gotFiles))
	assert.Equal(t, []string{"d1", "d2"}, folderIDs(gotFolders))
}

func TestProjectDriveInFolder(t *testing.T) {
	files, folders := testRecords()

	gotFiles, gotFolders := Project(files, folders, ViewDrive, strPtr("d1"))

	assert.Equal(t, []string{"f3"}, fileIDs(gotFiles))
	assert.Equal(t, []string{"d4"}, folderIDs(gotFolders))
}

func TestProjectRecentSortsByUpdatedAtDesc(t *testing.T) {
	files, folders := testRecords()

	gotFiles, gotFolders := Project(files, folders, ViewRecent, nil)

	// All non-trashed files regardless of folder, newest first.
	assert.Equal(t, []string{"f2", "f3", "f1"}, fileIDs(gotFiles))
	assert.Empty(t, gotFolders)
}

func TestProjectRecentIgnoresFolderContext(t *testing.T) {
	files, folders := testRecords()

	inFolder, _ := Project(files, folders, ViewRecent, strPtr("d1"))
	atRoot, _ := Project(files, folders, ViewRecent, nil)

	assert.Equal(t, fileIDs(atRoot), fileIDs(inFolder))
}

func TestProjectStarredExcludesTrashed(t *testing.T) {
	files, folders := testRecords()

	gotFiles, gotFolders := Project(files, folders, ViewStarred, nil)

	// f5 is starred but trashed; trash wins.
	assert.Equal(t, []string{"f2"}, fileIDs(gotFiles))
	assert.Empty(t, gotFolders)
}

func TestProjectTrash(t *testing.T) {
	files, folders := testRecords()

	gotFiles, gotFolders := Project(files, folders, ViewTrash, nil)

	assert.Equal(t, []string{"f4", "f5"}, fileIDs(gotFiles))
	assert.Equal(t, []string{"d3"}, folderIDs(gotFolders))
}

func TestProjectViewsDisjointOnTrashed(t *testing.T) {
	files, folders := testRecords()

	for _, view := range []View{ViewDrive, ViewRecent, ViewStarred} {
		gotFiles, _ := Project(files, folders, view, nil)
		for _, f := range gotFiles {
			assert.False(t, f.IsTrashed, "view %s leaked trashed file %s", view, f.ID)
		}
	}
}

func TestStorageUsedSkipsTrashed(t *testing.T) {
	files, _ := testRecords()

	// f1 + f2 + f3; trashed f4 and f5 excluded.
	assert.Equal(t, int64(600), StorageUsed(files))
}

func TestParseView(t *testing.T) {
	for _, ok := range []string{"drive", "recent", "starred", "trash"} {
		v, err := ParseView(ok)
		require.NoError(t, err)
		assert.Equal(t, View(ok), v)
	}

	_, err := ParseView("archive")
	assert.ErrorIs(t, err, ErrInvalidView)
}

func TestParseItemKind(t *testing.T) {
	k, err := ParseItemKind("file")
	require.NoError(t, err)
	assert.Equal(t, ItemFile, k)

	k, err = ParseItemKind("folder")
	require.NoError(t, err)
	assert.Equal(t, ItemFolder, k)

	_, err = ParseItemKind("document")
	assert.ErrorIs(t, err, ErrInvalidItemKind)
}
