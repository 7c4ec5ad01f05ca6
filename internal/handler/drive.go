package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/nimbusdrive/nimbus/internal/ctxkeys"
	"github.com/nimbusdrive/nimbus/internal/markdown"
	"github.com/nimbusdrive/nimbus/internal/model"
	"github.com/nimbusdrive/nimbus/internal/validation"
	"github.com/nimbusdrive/nimbus/internal/vfs"
)

type DriveHandler struct {
	manager  *vfs.Manager
	renderer *markdown.Renderer
}

func NewDriveHandler(manager *vfs.Manager, renderer *markdown.Renderer) *DriveHandler {
	return &DriveHandler{
		manager:  manager,
		renderer: renderer,
	}
}

func (h *DriveHandler) session(w http.ResponseWriter, r *http.Request) *vfs.Session {
	s, err := h.manager.Session(ctxkeys.User(r.Context()))
	if err != nil {
		respondVFSError(w, err)
		return nil
	}
	return s
}

type driveState struct {
	View            vfs.View       `json:"view"`
	FolderID        *string        `json:"folderId"`
	Breadcrumbs     []model.Folder `json:"breadcrumbs"`
	Files           []model.File   `json:"files"`
	Folders         []model.Folder `json:"folders"`
	StorageUsed     int64          `json:"storageUsed"`
	AnalyzingFileID string         `json:"analyzingFileId,omitempty"`
}

func snapshot(s *vfs.Session) driveState {
	return driveState{
		View:            s.View(),
		FolderID:        s.FolderID(),
		Breadcrumbs:     s.Breadcrumbs(),
		Files:           s.Files(),
		Folders:         s.Folders(),
		StorageUsed:     s.StorageUsed(),
		AnalyzingFileID: s.AnalyzingFileID(),
	}
}

// Drive returns the current projection. The optional view and folder query
// params navigate before projecting: ?view= switches views (resetting to
// root), ?folder= navigates within the Drive view.
func (h *DriveHandler) Drive(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}

	var err error
	switch {
	case r.URL.Query().Has("folder"):
		var folderID *string
		if id := r.URL.Query().Get("folder"); id != "" {
			folderID = &id
		}
		err = h.manager.Navigate(r.Context(), s, folderID)
	case r.URL.Query().Has("view"):
		var view vfs.View
		view, err = vfs.ParseView(r.URL.Query().Get("view"))
		if err == nil {
			err = h.manager.ChangeView(r.Context(), s, view)
		}
	default:
		err = h.manager.Load(r.Context(), s)
	}
	if err != nil {
		respondVFSError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, snapshot(s))
}

func (h *DriveHandler) Upload(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}

	// Cap the request body; multipart framing needs a little headroom over
	// the file size limit.
	r.Body = http.MaxBytesReader(w, r.Body, validation.MaxUploadSize+(1<<20))

	err := r.ParseMultipartForm(32 << 20)
	if err != nil {
		respondError(w, http.StatusRequestEntityTooLarge, "upload too large or malformed")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer func() {
		closeErr := file.Close()
		if closeErr != nil {
			slog.Error("failed to close upload", "error", closeErr)
		}
	}()

	err = validation.ValidateUpload(header)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	saved, err := h.manager.Upload(r.Context(), s, header.Filename, mimeType, header.Size, file)
	if err != nil {
		respondVFSError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, saved)
}

type nameRequest struct {
	Name string `json:"name"`
}

func (h *DriveHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}

	var req nameRequest
	if !decodeBody(w, r, &req) {
		return
	}

	folder, err := h.manager.CreateFolder(r.Context(), s, req.Name)
	if err != nil {
		respondVFSError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, folder)
}

func (h *DriveHandler) Rename(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}

	var req nameRequest
	if !decodeBody(w, r, &req) {
		return
	}

	err := h.manager.Rename(r.Context(), s, r.PathValue("id"), req.Name)
	if err != nil {
		respondVFSError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, snapshot(s))
}

func (h *DriveHandler) ToggleStar(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}

	err := h.manager.ToggleStar(r.Context(), s, r.PathValue("id"))
	if err != nil {
		respondVFSError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, snapshot(s))
}

// Delete soft-deletes outside the Trash view and permanently deletes inside
// it, matching the drive's delete button semantics.
func (h *DriveHandler) Delete(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}

	kind, err := vfs.ParseItemKind(r.URL.Query().Get("kind"))
	if err != nil {
		respondVFSError(w, err)
		return
	}

	err = h.manager.Delete(r.Context(), s, r.PathValue("id"), kind)
	if err != nil {
		respondVFSError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, snapshot(s))
}

func (h *DriveHandler) Restore(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}

	kind, err := vfs.ParseItemKind(r.URL.Query().Get("kind"))
	if err != nil {
		respondVFSError(w, err)
		return
	}

	err = h.manager.Restore(r.Context(), s, r.PathValue("id"), kind)
	if err != nil {
		respondVFSError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, snapshot(s))
}

func (h *DriveHandler) EmptyTrash(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}

	err := h.manager.EmptyTrash(r.Context(), s)
	if err != nil {
		respondVFSError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, snapshot(s))
}

func (h *DriveHandler) Storage(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}

	respondJSON(w, http.StatusOK, map[string]int64{"used": s.StorageUsed()})
}

func (h *DriveHandler) Download(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}

	url, err := h.manager.DownloadURL(r.Context(), s, r.PathValue("id"))
	if err != nil {
		respondVFSError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (h *DriveHandler) Preview(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}

	width := queryInt(r, "width", 400)
	height := queryInt(r, "height", 400)
	quality := queryInt(r, "quality", 100)

	url, err := h.manager.PreviewURL(r.Context(), s, r.PathValue("id"), width, height, quality)
	if err != nil {
		respondVFSError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"url": url})
}

// Render returns an HTML preview for text-like files with extracted content.
func (h *DriveHandler) Render(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}

	file, err := h.manager.File(s, r.PathValue("id"))
	if err != nil {
		respondVFSError(w, err)
		return
	}

	if !file.TextLike() || !file.HasContent() {
		respondError(w, http.StatusUnprocessableEntity, "file has no renderable text content")
		return
	}

	html, meta, err := h.renderer.Render([]byte(*file.Content))
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "failed to render content")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"title": markdown.Title(file.Name),
		"html":  string(html),
		"meta":  meta,
	})
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

type chatRequest struct {
	Message string `json:"message"`

	// History is accepted for forward compatibility but not used: every chat
	// turn is answered independently from the file's own context.
	History []struct {
		Role string `json:"role"`
		Text string `json:"text"`
	} `json:"history,omitempty"`
}

// Chat answers a question about a single file. Each request is independent;
// the file's extracted content and analysis are re-attached every time.
func (h *DriveHandler) Chat(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}

	var req chatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Message == "" {
		respondError(w, http.StatusUnprocessableEntity, "message is required")
		return
	}

	reply, err := h.manager.Chat(r.Context(), s, r.PathValue("id"), req.Message)
	if err != nil {
		respondVFSError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"reply": reply})
}
