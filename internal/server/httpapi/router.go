package httpapi

import (
	"net/http"

	"github.com/mkarpenko/codepad/internal/logging"
)

// NewRouter wires the API routes. Auth routes are open, editor and admin
// routes sit behind the Bearer-token middleware.
func NewRouter(ah *AuthHandler, fh *FilesHandler, sh *AssistHandler, secretKey []byte, logger logging.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /api/auth/register", ah.Register)
	mux.HandleFunc("POST /api/auth/login", ah.Login)
	mux.HandleFunc("POST /api/auth/refresh", ah.Refresh)
	mux.HandleFunc("GET /api/auth/oauth/github", ah.GithubRedirect)
	mux.HandleFunc("GET /api/auth/oauth/github/callback", ah.GithubCallback)

	authRequired := Authenticate(secretKey)
	mux.Handle("GET /api/auth/me", authRequired(http.HandlerFunc(ah.Me)))

	mux.Handle("GET /api/editor/files", authRequired(http.HandlerFunc(fh.List)))
	mux.Handle("GET /api/editor/files/{fileID}", authRequired(http.HandlerFunc(fh.Get)))
	mux.Handle("POST /api/editor/files", authRequired(http.HandlerFunc(fh.Save)))
	mux.Handle("POST /api/editor/files/upload", authRequired(http.HandlerFunc(fh.Upload)))
	mux.Handle("DELETE /api/editor/files/{fileID}", authRequired(http.HandlerFunc(fh.Delete)))

	mux.Handle("POST /api/editor/assist", authRequired(http.HandlerFunc(sh.Assist)))

	mux.Handle("POST /api/admin/storage", authRequired(http.HandlerFunc(fh.Bootstrap)))

	return LogRequests(logger)(mux)
}
