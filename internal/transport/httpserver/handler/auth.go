package handler

import (
	"errors"
	"net/http"
	"time"

	authdomain "family-directory-go/internal/domain/auth"
	"family-directory-go/internal/transport/httpserver/middleware"
)

type registerRequest struct {
	Username   string `json:"username" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	InviteCode string `json:"inviteCode" validate:"required"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type userWithProfileResponse struct {
	userResponse
	Profile *profileResponse `json:"profile"`
}

type profileResponse struct {
	ID              int     `json:"id"`
	UserID          int     `json:"userId"`
	DisplayName     string  `json:"displayName"`
	Bio             *string `json:"bio"`
	Location        *string `json:"location"`
	ProfileImageURL *string `json:"profileImageUrl"`

	LinkedinURL  *string `json:"linkedinUrl"`
	InstagramURL *string `json:"instagramUrl"`
	FacebookURL  *string `json:"facebookUrl"`
	XURL         *string `json:"xUrl"`
	TiktokURL    *string `json:"tiktokUrl"`
	YoutubeURL   *string `json:"youtubeUrl"`
	WebsiteURL   *string `json:"websiteUrl"`

	PrivacyShowSocial   bool `json:"privacyShowSocial"`
	PrivacyAllowContact bool `json:"privacyAllowContact"`
}

type updateProfileRequest struct {
	DisplayName     *string `json:"displayName"`
	Bio             *string `json:"bio"`
	Location        *string `json:"location"`
	ProfileImageURL *string `json:"profileImageUrl" validate:"omitempty,url"`

	LinkedinURL  *string `json:"linkedinUrl" validate:"omitempty,url"`
	InstagramURL *string `json:"instagramUrl" validate:"omitempty,url"`
	FacebookURL  *string `json:"facebookUrl" validate:"omitempty,url"`
	XURL         *string `json:"xUrl" validate:"omitempty,url"`
	TiktokURL    *string `json:"tiktokUrl" validate:"omitempty,url"`
	YoutubeURL   *string `json:"youtubeUrl" validate:"omitempty,url"`
	WebsiteURL   *string `json:"websiteUrl" validate:"omitempty,url"`

	PrivacyShowSocial   *bool `json:"privacyShowSocial"`
	PrivacyAllowContact *bool `json:"privacyAllowContact"`
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	user, err := h.Auth.Register(r.Context(), req.Username, req.Password, req.InviteCode)
	if err != nil {
		switch {
		case errors.Is(err, authdomain.ErrUsernameTaken):
			h.log.BusinessError("auth.register: username taken", err, "username", req.Username)
			writeError(w, http.StatusBadRequest, "username_taken", "username already taken")
		case errors.Is(err, authdomain.ErrInvalidInvite):
			h.log.BusinessError("auth.register: invalid invite", err, "username", req.Username)
			writeError(w, http.StatusBadRequest, "invalid_invite", "invalid or already used invite code")
		default:
			h.log.InternalError("auth.register: register failed", err, "username", req.Username)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	user, session, err := h.Auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, authdomain.ErrInvalidCredentials) {
			h.log.BusinessError("auth.login: invalid credentials", err)
			writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid username or password")
			return
		}
		h.log.InternalError("auth.login: login failed", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	h.setSessionCookie(w, r, session)
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	token := ""
	if cookie, err := r.Cookie(h.cookies.Name); err == nil {
		token = cookie.Value
	}

	if err := h.Auth.Logout(r.Context(), token); err != nil {
		h.log.InternalError("auth.logout: logout failed", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	h.clearSessionCookie(w, r)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	response := userWithProfileResponse{userResponse: toUserResponse(user)}

	profile, err := h.Auth.GetProfile(r.Context(), user.ID)
	switch {
	case err == nil:
		p := toProfileResponse(profile)
		response.Profile = &p
	case errors.Is(err, authdomain.ErrProfileNotFound):
		// tolerated: an account predating profile auto-creation
	default:
		h.log.InternalError("auth.me: get profile failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	patch := authdomain.ProfilePatch{
		DisplayName:         req.DisplayName,
		Bio:                 req.Bio,
		Location:            req.Location,
		ProfileImageURL:     req.ProfileImageURL,
		LinkedinURL:         req.LinkedinURL,
		InstagramURL:        req.InstagramURL,
		FacebookURL:         req.FacebookURL,
		XURL:                req.XURL,
		TiktokURL:           req.TiktokURL,
		YoutubeURL:          req.YoutubeURL,
		WebsiteURL:          req.WebsiteURL,
		PrivacyShowSocial:   req.PrivacyShowSocial,
		PrivacyAllowContact: req.PrivacyAllowContact,
	}

	profile, err := h.Auth.UpdateProfile(r.Context(), user, patch)
	if err != nil {
		h.log.InternalError("auth.update_profile: update failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(profile))
}

func (h *Handlers) setSessionCookie(w http.ResponseWriter, r *http.Request, session *authdomain.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookies.Name,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cookies.Secure || r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handlers) clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookies.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookies.Secure || r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func toUserResponse(user *authdomain.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Username:  user.Username,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}

func toProfileResponse(profile *authdomain.Profile) profileResponse {
	return profileResponse{
		ID:                  profile.ID,
		UserID:              profile.UserID,
		DisplayName:         profile.DisplayName,
		Bio:                 profile.Bio,
		Location:            profile.Location,
		ProfileImageURL:     profile.ProfileImageURL,
		LinkedinURL:         profile.LinkedinURL,
		InstagramURL:        profile.InstagramURL,
		FacebookURL:         profile.FacebookURL,
		XURL:                profile.XURL,
		TiktokURL:           profile.TiktokURL,
		YoutubeURL:          profile.YoutubeURL,
		WebsiteURL:          profile.WebsiteURL,
		PrivacyShowSocial:   profile.PrivacyShowSocial,
		PrivacyAllowContact: profile.PrivacyAllowContact,
	}
}
