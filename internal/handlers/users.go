package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/clipstream/backend/internal/auth"
	"github.com/clipstream/backend/internal/logging"
	"github.com/clipstream/backend/internal/models"
	"github.com/clipstream/backend/internal/repositories"
)

// UserHandler implements account, session, and channel-profile endpoints.
type UserHandler struct {
	Users    UserStore
	Tokens   TokenIssuer
	Views    ViewComposer
	Media    MediaStore
	Limiter  RateLimiter
	StageDir string
	NowFunc  func() time.Time
}

// userView is the public representation of an account.
type userView struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	AvatarURL string    `json:"avatarUrl"`
	CoverURL  string    `json:"coverUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserView(user models.User) userView {
	return userView{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FullName:  user.FullName,
		AvatarURL: user.AvatarURL,
		CoverURL:  user.CoverURL,
		CreatedAt: user.CreatedAt,
	}
}

type sessionView struct {
	User         userView `json:"user"`
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
}

// Register handles POST /api/v1/users/register (multipart).
func (h UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !allowRequest(h.Limiter, r, "register") {
		respondError(ctx, w, tooManyRequests("too many registration attempts"))
		return
	}

	username := strings.ToLower(trimmed(r.FormValue("username")))
	email := strings.ToLower(trimmed(r.FormValue("email")))
	fullName := trimmed(r.FormValue("fullName"))
	password := r.FormValue("password")

	if username == "" || email == "" || fullName == "" || password == "" {
		respondError(ctx, w, badRequest("username, email, fullName, and password are required"))
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		respondError(ctx, w, badRequest("invalid email address"))
		return
	}
	if len(password) < 8 {
		respondError(ctx, w, badRequest("password must be at least 8 characters"))
		return
	}

	avatarPath, err := stageUpload(r, "avatar", h.StageDir)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	coverPath, err := stageOptionalUpload(r, "coverImage", h.StageDir)
	if err != nil {
		discardStaged(avatarPath)
		respondError(ctx, w, err)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		discardStaged(avatarPath, coverPath)
		respondError(ctx, w, err)
		return
	}

	avatarURL, err := h.Media.Upload(ctx, avatarPath, "avatars")
	if err != nil {
		discardStaged(coverPath)
		respondError(ctx, w, err)
		return
	}

	coverURL := ""
	if coverPath != "" {
		coverURL, err = h.Media.Upload(ctx, coverPath, "covers")
		if err != nil {
			h.purge(ctx, avatarURL)
			respondError(ctx, w, err)
			return
		}
	}

	now := h.now()
	user := models.User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     email,
		FullName:  fullName,
		AvatarURL: avatarURL,
		CoverURL:  coverURL,
		Password:  string(hashed),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, conflict("username or email already taken"))
			return
		}
		respondError(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusCreated, toUserView(user), "user registered")
}

type loginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// Login handles POST /api/v1/users/login.
func (h UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !allowRequest(h.Limiter, r, "login") {
		respondError(ctx, w, tooManyRequests("too many login attempts"))
		return
	}

	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}

	user, err := h.Users.FindByUsernameOrEmail(ctx, strings.ToLower(trimmed(req.Identifier)))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, notFound("no account matches that username or email"))
			return
		}
		respondError(ctx, w, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		logging.FromContext(ctx).Warn("login password mismatch", "userId", user.ID)
		respondError(ctx, w, unauthorized("invalid credentials"))
		return
	}

	tokens, err := h.issueSession(r, w, user.ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusOK, sessionView{
		User:         toUserView(user),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, "logged in")
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh handles POST /api/v1/users/refresh. The presented refresh token
// must both verify and match the stored rotation token; a replayed token
// fails the second check even while its signature is valid.
func (h UserHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !allowRequest(h.Limiter, r, "refresh") {
		respondError(ctx, w, tooManyRequests("too many refresh attempts"))
		return
	}

	presented := ""
	if cookie, err := r.Cookie("refreshToken"); err == nil {
		presented = cookie.Value
	}
	if presented == "" {
		var req refreshRequest
		if err := decodeBody(r, &req); err == nil {
			presented = trimmed(req.RefreshToken)
		}
	}
	if presented == "" {
		respondError(ctx, w, unauthorized("refresh token is required"))
		return
	}

	userID, err := h.Tokens.Verify(presented, auth.KindRefresh)
	if err != nil {
		respondError(ctx, w, unauthorized("refresh token is invalid or expired"))
		return
	}

	user, err := h.Users.FindByID(ctx, userID)
	if err != nil {
		respondError(ctx, w, unauthorized("refresh token is invalid or expired"))
		return
	}
	if user.RefreshToken == "" || user.RefreshToken != presented {
		logging.FromContext(ctx).Warn("refresh token reuse or revocation", "userId", userID)
		respondError(ctx, w, unauthorized("refresh token is invalid or expired"))
		return
	}

	tokens, err := h.issueSession(r, w, userID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusOK, sessionView{
		User:         toUserView(user),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, "session refreshed")
}

// Logout handles POST /api/v1/users/logout.
func (h UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewerID := auth.ViewerFromContext(ctx)

	if err := h.Users.SetRefreshToken(ctx, viewerID, ""); err != nil {
		respondError(ctx, w, err)
		return
	}

	clearSessionCookies(w)
	respond(ctx, w, http.StatusOK, nil, "logged out")
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

// ChangePassword handles POST /api/v1/users/change-password.
func (h UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewerID := auth.ViewerFromContext(ctx)

	var req changePasswordRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}

	user, err := h.Users.FindByID(ctx, viewerID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		respondError(ctx, w, badRequest("old password is incorrect"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := h.Users.UpdatePassword(ctx, viewerID, string(hashed)); err != nil {
		respondError(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusOK, nil, "password changed")
}

// Current handles GET /api/v1/users/me.
func (h UserHandler) Current(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := h.Users.FindByID(ctx, auth.ViewerFromContext(ctx))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusOK, toUserView(user), "current user")
}

type updateAccountRequest struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
}

// UpdateAccount handles PATCH /api/v1/users/me.
func (h UserHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewerID := auth.ViewerFromContext(ctx)

	var req updateAccountRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}

	user, err := h.Users.FindByID(ctx, viewerID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	user.FullName = trimmed(req.FullName)
	user.Email = strings.ToLower(trimmed(req.Email))

	if err := h.Users.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, conflict("email already taken"))
			return
		}
		respondError(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusOK, toUserView(user), "account updated")
}

// UpdateAvatar handles PATCH /api/v1/users/me/avatar (multipart). The old
// avatar object is purged after the replacement is bound.
func (h UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.replaceImage(w, r, "avatar", "avatars",
		func(u models.User) string { return u.AvatarURL },
		h.Users.UpdateAvatar)
}

// UpdateCover handles PATCH /api/v1/users/me/cover (multipart).
func (h UserHandler) UpdateCover(w http.ResponseWriter, r *http.Request) {
	h.replaceImage(w, r, "coverImage", "covers",
		func(u models.User) string { return u.CoverURL },
		h.Users.UpdateCover)
}

func (h UserHandler) replaceImage(w http.ResponseWriter, r *http.Request, field, prefix string,
	oldURL func(models.User) string, update func(ctx context.Context, id, url string) error) {
	ctx := r.Context()
	viewerID := auth.ViewerFromContext(ctx)

	user, err := h.Users.FindByID(ctx, viewerID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	staged, err := stageUpload(r, field, h.StageDir)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	newURL, err := h.Media.Upload(ctx, staged, prefix)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := update(ctx, viewerID, newURL); err != nil {
		h.purge(ctx, newURL)
		respondError(ctx, w, err)
		return
	}

	h.purge(ctx, oldURL(user))

	respond(ctx, w, http.StatusOK, map[string]string{"url": newURL}, field+" updated")
}

// ChannelProfile handles GET /api/v1/users/channel/{username}.
func (h UserHandler) ChannelProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	username := strings.ToLower(trimmed(chi.URLParam(r, "username")))
	if username == "" {
		respondError(ctx, w, badRequest("username is required"))
		return
	}

	profile, err := h.Views.ChannelProfile(ctx, username, auth.ViewerFromContext(ctx))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusOK, profile, "channel profile")
}

func (h UserHandler) issueSession(r *http.Request, w http.ResponseWriter, userID string) (models.SessionTokens, error) {
	tokens, err := h.Tokens.Issue(userID)
	if err != nil {
		return models.SessionTokens{}, err
	}
	if err := h.Users.SetRefreshToken(r.Context(), userID, tokens.RefreshToken); err != nil {
		return models.SessionTokens{}, err
	}
	setSessionCookies(w, tokens)
	return tokens, nil
}

func (h UserHandler) purge(ctx context.Context, objectURL string) {
	if objectURL == "" {
		return
	}
	if err := h.Media.Delete(ctx, objectURL); err != nil {
		logging.FromContext(ctx).Warn("purge superseded media object", "url", objectURL, "error", err)
	}
}

func (h UserHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

func setSessionCookies(w http.ResponseWriter, tokens models.SessionTokens) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.AccessTokenCookie,
		Value:    tokens.AccessToken,
		Path:     "/",
		Expires:  tokens.AccessExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     "refreshToken",
		Value:    tokens.RefreshToken,
		Path:     "/",
		Expires:  tokens.RefreshExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{auth.AccessTokenCookie, "refreshToken"} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
