package vfs

import (
	"sync"

	"github.com/nimbusdrive/nimbus/internal/model"
)

// Session is the per-owner navigation and projection state. It is the single
// source of truth the presentation layer renders from; every mutation goes
// through the Manager, which keeps the cached projection consistent with the
// remote stores via optimistic updates.
type Session struct {
	mu sync.Mutex

	ownerID string

	view     View
	folderID *string

	files       []model.File
	folders     []model.Folder
	crumbs      []model.Folder
	storageUsed int64

	analyzingFileID string

	seeded  bool
	loadGen uint64
}

func newSession(ownerID string) *Session {
	return &Session{
		ownerID: ownerID,
		view:    ViewDrive,
	}
}

func (s *Session) OwnerID() string {
	return s.ownerID
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

func (s *Session) FolderID() *string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.folderID
}

// Files returns a copy of the current file projection.
func (s *Session) Files() []model.File {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.File, len(s.files))
	copy(out, s.files)
	return out
}

// Folders returns a copy of the current folder projection.
func (s *Session) Folders() []model.Folder {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Folder, len(s.folders))
	copy(out, s.folders)
	return out
}

// Breadcrumbs returns the folder trail for the Drive view. Navigation is one
// level deep, so the trail is at most the current folder.
func (s *Session) Breadcrumbs() []model.Folder {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Folder, len(s.crumbs))
	copy(out, s.crumbs)
	return out
}

// StorageUsed is the byte total over all non-trashed files for the owner, as
// of the last load or mutation.
func (s *Session) StorageUsed() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storageUsed
}

// AnalyzingFileID is the id of the file whose AI analysis is in flight, or
// empty when none is.
func (s *Session) AnalyzingFileID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analyzingFileID
}

// commit applies an optimistic local patch, attempts the remote call, and
// reverts the patch when the remote call fails. Every mutating operation that
// touches the cached projection goes through here so rollback behavior stays
// uniform.
func (s *Session) commit(apply, revert func(), remote func() error) error {
	s.mu.Lock()
	apply()
	s.mu.Unlock()

	if err := remote(); err != nil {
		s.mu.Lock()
		revert()
		s.mu.Unlock()
		return err
	}
	return nil
}

// beginLoad bumps the load generation and returns it. A finished load only
// publishes its results if no newer load has started since; the last call
// wins and stale results are discarded.
func (s *Session) beginLoad() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadGen++
	return s.loadGen
}

func (s *Session) removeFile(id string) (model.File, int, bool) {
	for i, f := range s.files {
		if f.ID == id {
			removed := f
			s.files = append(s.files[:i], s.files[i+1:]...)
			return removed, i, true
		}
	}
	return model.File{}, 0, false
}

func (s *Session) insertFile(f model.File, at int) {
	if at < 0 || at > len(s.files) {
		at = len(s.files)
	}
	s.files = append(s.files[:at], append([]model.File{f}, s.files[at:]...)...)
}

func (s *Session) removeFolder(id string) (model.Folder, int, bool) {
	for i, f := range s.folders {
		if f.ID == id {
			removed := f
			s.folders = append(s.folders[:i], s.folders[i+1:]...)
			return removed, i, true
		}
	}
	return model.Folder{}, 0, false
}

func (s *Session) insertFolder(f model.Folder, at int) {
	if at < 0 || at > len(s.folders) {
		at = len(s.folders)
	}
	s.folders = append(s.folders[:at], append([]model.Folder{f}, s.folders[at:]...)...)
}
