package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"github.com/mkarpenko/codepad/internal/common"
	"github.com/mkarpenko/codepad/internal/logging"
	"github.com/mkarpenko/codepad/internal/server/users"
)

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type tokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type githubUser struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Seams for the GitHub round-trips, overridable in tests.
var (
	exchangeOAuthCode = func(ctx context.Context, cfg *oauth2.Config, code string) (*oauth2.Token, error) {
		return cfg.Exchange(ctx, code)
	}
	fetchGithubUser = func(ctx context.Context, cfg *oauth2.Config, token *oauth2.Token) (*githubUser, error) {
		client := cfg.Client(ctx, token)
		resp, err := client.Get("https://api.github.com/user")
		if err != nil {
			return nil, err
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("github user endpoint returned %d", resp.StatusCode)
		}

		u := &githubUser{}
		if err := json.NewDecoder(resp.Body).Decode(u); err != nil {
			return nil, err
		}
		return u, nil
	}
)

// AuthHandler serves registration, login, token refresh and GitHub OAuth.
type AuthHandler struct {
	users  *users.Service
	oauth  *oauth2.Config
	logger logging.Logger
}

func NewAuthHandler(userService *users.Service, githubClientID, githubClientSecret string, logger logging.Logger) *AuthHandler {
	var cfg *oauth2.Config
	if githubClientID != "" {
		cfg = &oauth2.Config{
			ClientID:     githubClientID,
			ClientSecret: githubClientSecret,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		}
	}

	return &AuthHandler{
		users:  userService,
		oauth:  cfg,
		logger: logger.With("module", "httpapi"),
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	_, pair, err := h.users.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pair, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pair, err := h.users.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, userResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: user.CreatedAt,
	})
}

// oauthStateCookie holds the anti-forgery state between the redirect and
// the provider callback.
const oauthStateCookie = "oauth_state"

// GithubRedirect sends the browser to GitHub's consent page. The state value
// is pinned in a short-lived cookie so the callback can verify it.
func (h *AuthHandler) GithubRedirect(w http.ResponseWriter, r *http.Request) {
	if h.oauth == nil {
		writeError(w, http.StatusNotFound, "github sign-in is not configured")
		return
	}

	state, err := common.MakeRandHexString(16)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/api/auth/oauth/github",
		MaxAge:   300,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.oauth.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// GithubCallback exchanges the authorization code, resolves the GitHub
// identity to a local account and hands the tokens back to the frontend.
func (h *AuthHandler) GithubCallback(w http.ResponseWriter, r *http.Request) {
	if h.oauth == nil {
		writeError(w, http.StatusNotFound, "github sign-in is not configured")
		return
	}

	state := r.URL.Query().Get("state")
	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || state == "" || cookie.Value != state {
		writeError(w, http.StatusBadRequest, "state mismatch")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "code missing")
		return
	}

	token, err := exchangeOAuthCode(r.Context(), h.oauth, code)
	if err != nil {
		h.logger.Error(r.Context(), "oauth code exchange failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to exchange token")
		return
	}

	ghUser, err := fetchGithubUser(r.Context(), h.oauth, token)
	if err != nil {
		h.logger.Error(r.Context(), "github user lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get user info")
		return
	}

	email := ghUser.Email
	if email == "" {
		// GitHub hides the address for private-email accounts.
		email = ghUser.Login + "@users.noreply.github.com"
	}
	name := ghUser.Name
	if name == "" {
		name = ghUser.Login
	}

	pair, err := h.users.LoginGithub(r.Context(), strconv.FormatInt(ghUser.ID, 10), email, name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	redirect := fmt.Sprintf("/?accessToken=%s&refreshToken=%s",
		url.QueryEscape(pair.AccessToken), url.QueryEscape(pair.RefreshToken))
	http.Redirect(w, r, redirect, http.StatusTemporaryRedirect)
}
