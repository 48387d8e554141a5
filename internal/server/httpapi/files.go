package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/mkarpenko/codepad/internal/server/files"
)

type fileResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Content      string    `json:"content"`
	Language     string    `json:"language"`
	LastModified time.Time `json:"lastModified"`
}

type fileInfoResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Language     string    `json:"language"`
	LastModified time.Time `json:"lastModified"`
}

type listFilesResponse struct {
	Files []fileInfoResponse `json:"files"`
}

type saveFileRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Content  string `json:"content"`
	Language string `json:"language"`
}

type bootstrapResponse struct {
	Created bool `json:"created"`
}

// FilesHandler serves the per-user virtual file namespace.
type FilesHandler struct {
	files *files.Service
}

func NewFilesHandler(fileService *files.Service) *FilesHandler {
	return &FilesHandler{files: fileService}
}

func (h *FilesHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	infos, err := h.files.List(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := listFilesResponse{Files: make([]fileInfoResponse, 0, len(infos))}
	for _, fi := range infos {
		out.Files = append(out.Files, fileInfoResponse{
			ID:           fi.ID,
			Name:         fi.Name,
			Language:     fi.Language,
			LastModified: fi.LastModified,
		})
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *FilesHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	file, err := h.files.Get(r.Context(), userID, r.PathValue("fileID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toFileResponse(file))
}

func (h *FilesHandler) Save(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, false)
}

func (h *FilesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, true)
}

func (h *FilesHandler) save(w http.ResponseWriter, r *http.Request, upload bool) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req saveFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	saveReq := files.SaveRequest{
		ID:       req.ID,
		Name:     req.Name,
		Content:  req.Content,
		Language: req.Language,
	}

	var (
		file *files.File
		err  error
	)
	if upload {
		file, err = h.files.Upload(r.Context(), userID, saveReq)
	} else {
		file, err = h.files.Save(r.Context(), userID, saveReq)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toFileResponse(file))
}

func (h *FilesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.files.Delete(r.Context(), userID, r.PathValue("fileID")); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Bootstrap provisions the shared storage area. Exposed on the admin route.
func (h *FilesHandler) Bootstrap(w http.ResponseWriter, r *http.Request) {
	created, err := h.files.Bootstrap(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, bootstrapResponse{Created: created})
}

func toFileResponse(f *files.File) fileResponse {
	return fileResponse{
		ID:           f.ID,
		Name:         f.Name,
		Content:      f.Content,
		Language:     f.Language,
		LastModified: f.LastModified,
	}
}
