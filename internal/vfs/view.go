package vfs

import (
	"fmt"
	"sort"

	"github.com/nimbusdrive/nimbus/internal/model"
)

// View is a named filter/sort policy over the owner's full record set.
type View string

const (
	ViewDrive   View = "drive"
	ViewRecent  View = "recent"
	ViewStarred View = "starred"
	ViewTrash   View = "trash"
)

func ParseView(s string) (View, error) {
	switch View(s) {
	case ViewDrive, ViewRecent, ViewStarred, ViewTrash:
		return View(s), nil
	}
	return "", fmt.Errorf("unknown view %q: %w", s, ErrInvalidView)
}

// ItemKind distinguishes file and folder targets for trash operations.
type ItemKind string

const (
	ItemFile   ItemKind = "file"
	ItemFolder ItemKind = "folder"
)

func ParseItemKind(s string) (ItemKind, error) {
	switch ItemKind(s) {
	case ItemFile, ItemFolder:
		return ItemKind(s), nil
	}
	return "", fmt.Errorf("unknown item kind %q: %w", s, ErrInvalidItemKind)
}

// Project computes the visible files and folders for a view. It is a pure
// function of its inputs; callers re-run it after every mutation.
func Project(files []model.File, folders []model.Folder, view View, folderID *string) ([]model.File, []model.Folder) {
	var outFiles []model.File
	var outFolders []model.Folder

	switch view {
	case ViewDrive:
		for _, f := range files {
			if sameFolder(f.FolderID, folderID) && !f.IsTrashed {
				outFiles = append(outFiles, f)
			}
		}
		for _, f := range folders {
			if sameFolder(f.ParentID, folderID) && !f.IsTrashed {
				outFolders = append(outFolders, f)
			}
		}

	case ViewRecent:
		for _, f := range files {
			if !f.IsTrashed {
				outFiles = append(outFiles, f)
			}
		}
		sort.SliceStable(outFiles, func(i, j int) bool {
			return outFiles[i].UpdatedAt.After(outFiles[j].UpdatedAt)
		})

	case ViewStarred:
		for _, f := range files {
			if f.IsStarred && !f.IsTrashed {
				outFiles = append(outFiles, f)
			}
		}

	case ViewTrash:
		for _, f := range files {
			if f.IsTrashed {
				outFiles = append(outFiles, f)
			}
		}
		for _, f := range folders {
			if f.IsTrashed {
				outFolders = append(outFolders, f)
			}
		}
	}

	return outFiles, outFolders
}

// StorageUsed sums sizes over non-trashed files.
func StorageUsed(files []model.File) int64 {
	var total int64
	for _, f := range files {
		if !f.IsTrashed {
			total += f.Size
		}
	}
	return total
}

func sameFolder(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
