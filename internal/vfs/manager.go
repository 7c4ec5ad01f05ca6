package vfs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nimbusdrive/nimbus/internal/ai"
	"github.com/nimbusdrive/nimbus/internal/model"
	"github.com/nimbusdrive/nimbus/internal/repository"
	"github.com/nimbusdrive/nimbus/internal/storage"
)

const (
	// contentExtractCap bounds how much text is extracted from an upload for
	// AI context. Analysis truncates further at request time.
	contentExtractCap = 64 << 10

	// imageReadCap bounds how many blob bytes are fetched back for image
	// analysis and chat.
	imageReadCap = 8 << 20
)

var seedFolderNames = []string{"Documents", "Images", "Work"}

// Manager orchestrates all drive mutations against the metadata and blob
// stores and keeps per-owner session projections consistent with them.
type Manager struct {
	files    repository.FileRepository
	folders  repository.FolderRepository
	blobs    storage.BlobStore
	analyzer ai.Service

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(files repository.FileRepository, folders repository.FolderRepository, blobs storage.BlobStore, analyzer ai.Service) *Manager {
	return &Manager{
		files:    files,
		folders:  folders,
		blobs:    blobs,
		analyzer: analyzer,
		sessions: make(map[string]*Session),
	}
}

// Session returns the session for a user, creating one at the Drive root on
// first use. A nil user fails fast before any remote call.
func (m *Manager) Session(user *model.User) (*Session, error) {
	if user == nil || user.ID == "" {
		return nil, ErrUnauthenticated
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[user.ID]
	if !ok {
		s = newSession(user.ID)
		m.sessions[user.ID] = s
	}
	return s, nil
}

// EndSession drops the cached session state for a user, for logout.
func (m *Manager) EndSession(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

// Load reloads the projection from the metadata store. Results of a load that
// was superseded by a newer one are discarded. On read failure the cached
// projection is left at its last known good state.
func (m *Manager) Load(ctx context.Context, s *Session) error {
	gen := s.beginLoad()

	if err := m.seed(s); err != nil {
		return fmt.Errorf("failed to seed drive: %w", err)
	}

	allFiles, err := m.files.AllByOwner(s.ownerID)
	if err != nil {
		return fmt.Errorf("failed to load files: %w", err)
	}
	allFolders, err := m.folders.AllByOwner(s.ownerID)
	if err != nil {
		return fmt.Errorf("failed to load folders: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadGen != gen {
		// A newer load started while this one was in flight.
		return nil
	}

	s.files, s.folders = Project(allFiles, allFolders, s.view, s.folderID)
	s.storageUsed = StorageUsed(allFiles)

	s.crumbs = nil
	if s.view == ViewDrive && s.folderID != nil {
		for _, f := range allFolders {
			if f.ID == *s.folderID {
				s.crumbs = []model.Folder{f}
				break
			}
		}
	}

	return nil
}

// Navigate switches to the Drive view at the given folder (nil for root) and
// reloads the projection.
func (m *Manager) Navigate(ctx context.Context, s *Session, folderID *string) error {
	s.mu.Lock()
	s.view = ViewDrive
	s.folderID = folderID
	s.mu.Unlock()

	return m.Load(ctx, s)
}

// ChangeView switches views, resets the folder to root, and reloads.
func (m *Manager) ChangeView(ctx context.Context, s *Session, view View) error {
	s.mu.Lock()
	s.view = view
	s.folderID = nil
	s.mu.Unlock()

	return m.Load(ctx, s)
}

// seed creates the default folders for an owner with no root folders. The
// zero-root-folders check makes the seed a natural no-op for returning users;
// the session flag only avoids re-checking on every load.
func (m *Manager) seed(s *Session) error {
	s.mu.Lock()
	seeded := s.seeded
	s.mu.Unlock()
	if seeded {
		return nil
	}

	count, err := m.folders.RootCount(s.ownerID)
	if err != nil {
		return err
	}

	if count == 0 {
		for _, name := range seedFolderNames {
			folder := &model.Folder{
				ID:        uuid.New().String(),
				OwnerID:   s.ownerID,
				Name:      name,
				CreatedAt: time.Now(),
			}
			if err := m.folders.Create(folder); err != nil {
				return err
			}
		}
		slog.Info("seeded default folders", "owner_id", s.ownerID)
	}

	s.mu.Lock()
	s.seeded = true
	s.mu.Unlock()
	return nil
}

// Upload writes the blob, then the metadata record, appends the file to the
// projection without a full reload, and schedules AI analysis. A metadata
// failure after a successful blob write triggers a compensating blob delete;
// if that also fails the orphan is logged at error level for reconciliation.
func (m *Manager) Upload(ctx context.Context, s *Session, name, mimeType string, size int64, body io.Reader) (*model.File, error) {
	s.mu.Lock()
	targetFolder := s.folderID
	if s.view != ViewDrive {
		targetFolder = nil
	}
	s.mu.Unlock()

	kind := model.KindFromMime(mimeType)
	id := uuid.New().String()
	now := time.Now()

	// Tee the first bytes aside for text extraction while streaming the full
	// body to the blob store.
	var extract cappedBuffer
	reader := body
	if kind == model.KindText || kind == model.KindCode {
		extract.limit = contentExtractCap
		reader = io.TeeReader(body, &extract)
	}

	if err := m.blobs.Save(ctx, id, reader); err != nil {
		return nil, fmt.Errorf("failed to save blob: %w", err)
	}

	file := &model.File{
		ID:        id,
		OwnerID:   s.ownerID,
		Name:      name,
		Kind:      kind,
		MimeType:  mimeType,
		Size:      size,
		FolderID:  targetFolder,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if extract.buf.Len() > 0 {
		content := strings.ToValidUTF8(extract.buf.String(), "")
		file.Content = &content
	}

	if err := m.files.Create(file); err != nil {
		if delErr := m.blobs.Delete(ctx, id); delErr != nil {
			slog.Error("orphaned blob: metadata write and compensating delete both failed",
				"blob_id", id, "error", delErr)
		}
		return nil, fmt.Errorf("failed to create file record: %w", err)
	}

	s.mu.Lock()
	if m.visibleNow(s, file) {
		if s.view == ViewRecent {
			s.files = append([]model.File{*file}, s.files...)
		} else {
			s.files = append(s.files, *file)
		}
	}
	s.storageUsed += file.Size
	s.analyzingFileID = file.ID
	s.mu.Unlock()

	go m.analyze(s, *file)

	return file, nil
}

// visibleNow reports whether a freshly created file belongs in the current
// projection. Callers must hold s.mu.
func (m *Manager) visibleNow(s *Session, file *model.File) bool {
	switch s.view {
	case ViewDrive:
		return sameFolder(file.FolderID, s.folderID)
	case ViewRecent:
		return true
	default:
		return false
	}
}

// analyze runs the fire-and-forget AI summarization for an uploaded file and
// folds the result into the projection only if the file is still visible.
func (m *Manager) analyze(s *Session, file model.File) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var image []byte
	if file.Kind == model.KindImage {
		blob, err := m.openBlob(ctx, file.ID)
		if err != nil {
			slog.Warn("failed to read blob for analysis", "file_id", file.ID, "error", err)
		}
		image = blob
	}

	result := m.analyzer.Analyze(ctx, &file, image)

	if err := m.files.SetAnalysis(file.OwnerID, file.ID, result.Summary, result.Tags); err != nil {
		slog.Error("failed to persist analysis", "file_id", file.ID, "error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.analyzingFileID == file.ID {
		s.analyzingFileID = ""
	}
	for i := range s.files {
		if s.files[i].ID == file.ID {
			s.files[i].Summary = &result.Summary
			s.files[i].Tags = result.Tags
			break
		}
	}
}

func (m *Manager) openBlob(ctx context.Context, id string) ([]byte, error) {
	rc, err := m.blobs.Open(ctx, id)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil {
			slog.Warn("failed to close blob reader", "blob_id", id, "error", closeErr)
		}
	}()

	return io.ReadAll(io.LimitReader(rc, imageReadCap))
}

// CreateFolder creates a folder under the current navigation target (root
// outside the Drive view) and appends it to the projection.
func (m *Manager) CreateFolder(ctx context.Context, s *Session, name string) (*model.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	s.mu.Lock()
	parent := s.folderID
	if s.view != ViewDrive {
		parent = nil
	}
	s.mu.Unlock()

	folder := &model.Folder{
		ID:        uuid.New().String(),
		OwnerID:   s.ownerID,
		Name:      name,
		ParentID:  parent,
		CreatedAt: time.Now(),
	}

	if err := m.folders.Create(folder); err != nil {
		return nil, fmt.Errorf("failed to create folder: %w", err)
	}

	s.mu.Lock()
	if s.view == ViewDrive && sameFolder(parent, s.folderID) {
		s.folders = append(s.folders, *folder)
	}
	s.mu.Unlock()

	return folder, nil
}

// Rename changes a file's display name, optimistically.
func (m *Manager) Rename(ctx context.Context, s *Session, id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameRequired
	}

	var prev string
	err := s.commit(
		func() {
			for i := range s.files {
				if s.files[i].ID == id {
					prev = s.files[i].Name
					s.files[i].Name = name
					s.files[i].UpdatedAt = time.Now()
					break
				}
			}
		},
		func() {
			for i := range s.files {
				if s.files[i].ID == id {
					s.files[i].Name = prev
					break
				}
			}
		},
		func() error { return m.files.Rename(s.ownerID, id, name) },
	)
	return mapNotFound(err)
}

// ToggleStar flips a file's starred flag, optimistically. In the Starred view
// an unstarred file leaves the projection.
func (m *Manager) ToggleStar(ctx context.Context, s *Session, id string) error {
	s.mu.Lock()
	idx := -1
	for i := range s.files {
		if s.files[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return m.toggleStarUncached(s, id)
	}
	starred := !s.files[idx].IsStarred
	s.mu.Unlock()

	var removed model.File
	var removedAt int
	var wasRemoved bool
	err := s.commit(
		func() {
			for i := range s.files {
				if s.files[i].ID == id {
					s.files[i].IsStarred = starred
					s.files[i].UpdatedAt = time.Now()
					break
				}
			}
			if s.view == ViewStarred && !starred {
				removed, removedAt, wasRemoved = s.removeFile(id)
			}
		},
		func() {
			if wasRemoved {
				removed.IsStarred = !starred
				s.insertFile(removed, removedAt)
				return
			}
			for i := range s.files {
				if s.files[i].ID == id {
					s.files[i].IsStarred = !starred
					break
				}
			}
		},
		func() error { return m.files.SetStarred(s.ownerID, id, starred) },
	)
	return mapNotFound(err)
}

// toggleStarUncached handles a star toggle for a file outside the current
// projection; there is no local state to patch, so it reads then writes.
func (m *Manager) toggleStarUncached(s *Session, id string) error {
	file, err := m.files.ByID(s.ownerID, id)
	if err != nil {
		return mapNotFound(err)
	}
	return mapNotFound(m.files.SetStarred(s.ownerID, id, !file.IsStarred))
}

// Delete soft-deletes an item outside the Trash view and permanently deletes
// it inside the Trash view. Permanent folder deletion cascades one level: the
// folder's direct child files are deleted first, nested subfolders are not.
func (m *Manager) Delete(ctx context.Context, s *Session, id string, kind ItemKind) error {
	s.mu.Lock()
	permanent := s.view == ViewTrash
	s.mu.Unlock()

	if permanent {
		return m.deleteForever(ctx, s, id, kind)
	}
	return m.moveToTrash(s, id, kind)
}

func (m *Manager) moveToTrash(s *Session, id string, kind ItemKind) error {
	var removedFile model.File
	var removedFolder model.Folder
	var at int
	var ok bool

	err := s.commit(
		func() {
			if kind == ItemFile {
				removedFile, at, ok = s.removeFile(id)
				if ok {
					s.storageUsed -= removedFile.Size
				}
			} else {
				removedFolder, at, ok = s.removeFolder(id)
			}
		},
		func() {
			if !ok {
				return
			}
			if kind == ItemFile {
				s.insertFile(removedFile, at)
				s.storageUsed += removedFile.Size
			} else {
				s.insertFolder(removedFolder, at)
			}
		},
		func() error {
			if kind == ItemFile {
				return m.files.SetTrashed(s.ownerID, id, true)
			}
			return m.folders.SetTrashed(s.ownerID, id, true)
		},
	)
	return mapNotFound(err)
}

func (m *Manager) deleteForever(ctx context.Context, s *Session, id string, kind ItemKind) error {
	var removedFile model.File
	var removedFolder model.Folder
	var at int
	var ok bool

	err := s.commit(
		func() {
			if kind == ItemFile {
				removedFile, at, ok = s.removeFile(id)
			} else {
				removedFolder, at, ok = s.removeFolder(id)
			}
		},
		func() {
			if !ok {
				return
			}
			if kind == ItemFile {
				s.insertFile(removedFile, at)
			} else {
				s.insertFolder(removedFolder, at)
			}
		},
		func() error {
			if kind == ItemFile {
				return m.destroyFile(ctx, s.ownerID, id)
			}
			return m.destroyFolder(ctx, s.ownerID, id)
		},
	)
	return mapNotFound(err)
}

// destroyFile removes blob then metadata. Both must succeed; a blob-store
// failure leaves the record in place for a retry.
func (m *Manager) destroyFile(ctx context.Context, ownerID, id string) error {
	if err := m.blobs.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	if err := m.files.Delete(ownerID, id); err != nil {
		return fmt.Errorf("failed to delete file record: %w", err)
	}
	return nil
}

func (m *Manager) destroyFolder(ctx context.Context, ownerID, id string) error {
	children, err := m.files.ByFolder(ownerID, &id)
	if err != nil {
		return fmt.Errorf("failed to list folder contents: %w", err)
	}

	for _, child := range children {
		if err := m.destroyFile(ctx, ownerID, child.ID); err != nil {
			return err
		}
	}

	if err := m.folders.Delete(ownerID, id); err != nil {
		return fmt.Errorf("failed to delete folder record: %w", err)
	}
	return nil
}

// Restore clears an item's trashed flag, optimistically. A restore of a
// permanently deleted item fails with ErrItemNotFound.
func (m *Manager) Restore(ctx context.Context, s *Session, id string, kind ItemKind) error {
	var removedFile model.File
	var removedFolder model.Folder
	var at int
	var ok bool

	err := s.commit(
		func() {
			// In the Trash view a restored item leaves the projection.
			if s.view != ViewTrash {
				return
			}
			if kind == ItemFile {
				removedFile, at, ok = s.removeFile(id)
				if ok {
					s.storageUsed += removedFile.Size
				}
			} else {
				removedFolder, at, ok = s.removeFolder(id)
			}
		},
		func() {
			if !ok {
				return
			}
			if kind == ItemFile {
				s.insertFile(removedFile, at)
				s.storageUsed -= removedFile.Size
			} else {
				s.insertFolder(removedFolder, at)
			}
		},
		func() error {
			if kind == ItemFile {
				return m.files.SetTrashed(s.ownerID, id, false)
			}
			return m.folders.SetTrashed(s.ownerID, id, false)
		},
	)
	return mapNotFound(err)
}

// EmptyTrash permanently deletes every trashed record for the owner. It keeps
// going after per-item failures and reports the ids that failed. Trashed
// folders are removed metadata-only: files inside them that are themselves
// trashed are handled by the file pass.
func (m *Manager) EmptyTrash(ctx context.Context, s *Session) error {
	trashedFiles, err := m.files.TrashedByOwner(s.ownerID)
	if err != nil {
		return fmt.Errorf("failed to list trashed files: %w", err)
	}
	trashedFolders, err := m.folders.TrashedByOwner(s.ownerID)
	if err != nil {
		return fmt.Errorf("failed to list trashed folders: %w", err)
	}

	var failed []string
	for _, f := range trashedFiles {
		if err := m.destroyFile(ctx, s.ownerID, f.ID); err != nil {
			slog.Error("failed to delete trashed file", "file_id", f.ID, "error", err)
			failed = append(failed, f.ID)
		}
	}
	for _, f := range trashedFolders {
		if err := m.folders.Delete(s.ownerID, f.ID); err != nil {
			slog.Error("failed to delete trashed folder", "folder_id", f.ID, "error", err)
			failed = append(failed, f.ID)
		}
	}

	if loadErr := m.Load(ctx, s); loadErr != nil {
		slog.Warn("failed to reload after emptying trash", "error", loadErr)
	}

	if len(failed) > 0 {
		return &BulkError{FailedIDs: failed}
	}
	return nil
}

// File returns an owned file record, bypassing the projection cache. Used for
// download/preview/chat lookups that must work from any view.
func (m *Manager) File(s *Session, id string) (*model.File, error) {
	file, err := m.files.ByID(s.ownerID, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return file, nil
}

// DownloadURL returns a presigned URL for a file's blob.
func (m *Manager) DownloadURL(ctx context.Context, s *Session, id string) (string, error) {
	if _, err := m.File(s, id); err != nil {
		return "", err
	}
	return m.blobs.DownloadURL(ctx, id)
}

// PreviewURL returns a presigned preview URL for a file's blob.
func (m *Manager) PreviewURL(ctx context.Context, s *Session, id string, width, height, quality int) (string, error) {
	if _, err := m.File(s, id); err != nil {
		return "", err
	}
	return m.blobs.PreviewURL(ctx, id, width, height, quality)
}

// Chat answers a stateless single-turn question about an owned file,
// re-attaching the file's content (or image bytes) on every call.
func (m *Manager) Chat(ctx context.Context, s *Session, id, message string) (string, error) {
	file, err := m.File(s, id)
	if err != nil {
		return "", err
	}

	var image []byte
	if file.Kind == model.KindImage {
		image, err = m.openBlob(ctx, file.ID)
		if err != nil {
			return "", fmt.Errorf("failed to read blob for chat: %w", err)
		}
	}

	return m.analyzer.Chat(ctx, file, image, message)
}

func mapNotFound(err error) error {
	if errors.Is(err, repository.ErrFileNotFound) || errors.Is(err, repository.ErrFolderNotFound) {
		return ErrItemNotFound
	}
	return err
}

// cappedBuffer keeps the first limit bytes written to it and discards the
// rest, always reporting full writes.
type cappedBuffer struct {
	buf   bytes.Buffer
	limit int
}

func (c *cappedBuffer) Write(p []byte) (int, error) {
	if remaining := c.limit - c.buf.Len(); remaining > 0 {
		if len(p) > remaining {
			c.buf.Write(p[:remaining])
		} else {
			c.buf.Write(p)
		}
	}
	return len(p), nil
}
