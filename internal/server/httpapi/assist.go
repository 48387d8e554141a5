package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/mkarpenko/codepad/internal/server/assistant"
)

type assistRequest struct {
	Command  string `json:"command"`
	Code     string `json:"code"`
	Language string `json:"language"`
	Prompt   string `json:"prompt"`
}

type assistResponse struct {
	Result string `json:"result"`
}

// AssistHandler fronts the canned AI responder.
type AssistHandler struct {
	assistant *assistant.Service
}

func NewAssistHandler(assistService *assistant.Service) *AssistHandler {
	return &AssistHandler{assistant: assistService}
}

func (h *AssistHandler) Assist(w http.ResponseWriter, r *http.Request) {
	if _, ok := UserIDFromContext(r.Context()); !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req assistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var (
		result string
		err    error
	)
	if req.Command == "generate" {
		result, err = h.assistant.Generate(r.Context(), req.Prompt, req.Language)
	} else {
		result, err = h.assistant.Respond(r.Context(), assistant.Command(req.Command), req.Code, req.Language)
	}
	if err != nil {
		if r.Context().Err() != nil {
			// Client went away mid-delay, nothing useful to write.
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, assistResponse{Result: result})
}
