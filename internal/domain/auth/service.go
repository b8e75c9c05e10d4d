package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"
)

const (
	inviteCodeLength   = 8
	inviteCodeAttempts = 10
	sessionTokenBytes  = 32
)

type Service struct {
	repo       Repository
	sessionTTL time.Duration
}

func NewService(repo Repository, sessionTTL time.Duration) *Service {
	return &Service{repo: repo, sessionTTL: sessionTTL}
}

// RequireRole is the authorization predicate used by handlers and
// services alike.
func RequireRole(user *User, role string) error {
	if user == nil || user.Role != role {
		return ErrForbidden
	}
	return nil
}

// Register creates a User plus its default Profile and consumes the
// invite, all inside one transaction.
func (s *Service) Register(ctx context.Context, username, password, inviteCode string) (*User, error) {
	username = strings.TrimSpace(username)
	inviteCode = strings.ToUpper(strings.TrimSpace(inviteCode))
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if password == "" {
		return nil, fmt.Errorf("password is required")
	}
	if inviteCode == "" {
		return nil, ErrInvalidInvite
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	var result User
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if _, err := tx.GetUserByUsername(ctx, username); err == nil {
			return ErrUsernameTaken
		} else if !errors.Is(err, ErrUserNotFound) {
			return err
		}

		invite, err := tx.GetInviteByCode(ctx, inviteCode)
		if err != nil {
			if errors.Is(err, ErrInvalidInvite) {
				return ErrInvalidInvite
			}
			return err
		}
		if invite.UsedAt != nil {
			return ErrInvalidInvite
		}

		user := User{
			Username:     username,
			PasswordHash: hash,
			Role:         RoleMember,
		}
		if err := tx.CreateUser(ctx, &user); err != nil {
			return err
		}

		profile := Profile{
			UserID:              user.ID,
			DisplayName:         defaultDisplayName(username),
			PrivacyShowSocial:   true,
			PrivacyAllowContact: true,
		}
		if err := tx.CreateProfile(ctx, &profile); err != nil {
			return err
		}

		if err := tx.MarkInviteUsed(ctx, invite.ID, time.Now().UTC()); err != nil {
			return err
		}

		result = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// Login verifies credentials and opens a session. Unknown usernames and
// wrong passwords fail identically so usernames cannot be enumerated.
func (s *Service) Login(ctx context.Context, username, password string) (*User, *Session, error) {
	username = strings.TrimSpace(username)

	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !VerifyPassword(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	token, err := generateSecureToken(sessionTokenBytes)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	session := Session{
		Token:     token,
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.repo.CreateSession(ctx, &session); err != nil {
		return nil, nil, err
	}

	return user, &session, nil
}

// Logout invalidates the session. Unknown tokens are not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.repo.DeleteSession(ctx, token)
}

// CurrentUser resolves the caller from an opaque session token.
func (s *Service) CurrentUser(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}

	session, err := s.repo.GetSession(ctx, token)
	if err != nil {
		return nil, err
	}
	if session.Expired(time.Now().UTC()) {
		_ = s.repo.DeleteSession(ctx, token)
		return nil, ErrSessionNotFound
	}

	return s.repo.GetUser(ctx, session.UserID)
}

func (s *Service) GetProfile(ctx context.Context, userID int) (*Profile, error) {
	return s.repo.GetProfile(ctx, userID)
}

// ProfilePatch is a partial profile update. Nil fields are untouched.
type ProfilePatch struct {
	DisplayName         *string
	Bio                 *string
	Location            *string
	ProfileImageURL     *string
	LinkedinURL         *string
	InstagramURL        *string
	FacebookURL         *string
	XURL                *string
	TiktokURL           *string
	YoutubeURL          *string
	WebsiteURL          *string
	PrivacyShowSocial   *bool
	PrivacyAllowContact *bool
}

func (p ProfilePatch) fields() map[string]interface{} {
	fields := make(map[string]interface{})
	setString := func(column string, value *string) {
		if value != nil {
			fields[column] = *value
		}
	}
	setString("display_name", p.DisplayName)
	setString("bio", p.Bio)
	setString("location", p.Location)
	setString("profile_image_url", p.ProfileImageURL)
	setString("linkedin_url", p.LinkedinURL)
	setString("instagram_url", p.InstagramURL)
	setString("facebook_url", p.FacebookURL)
	setString("x_url", p.XURL)
	setString("tiktok_url", p.TiktokURL)
	setString("youtube_url", p.YoutubeURL)
	setString("website_url", p.WebsiteURL)
	if p.PrivacyShowSocial != nil {
		fields["privacy_show_social"] = *p.PrivacyShowSocial
	}
	if p.PrivacyAllowContact != nil {
		fields["privacy_allow_contact"] = *p.PrivacyAllowContact
	}
	return fields
}

// UpdateProfile applies a partial patch, creating the profile row if it
// is somehow missing.
func (s *Service) UpdateProfile(ctx context.Context, user *User, patch ProfilePatch) (*Profile, error) {
	if user == nil {
		return nil, ErrUserNotFound
	}

	profile, err := s.repo.GetProfile(ctx, user.ID)
	if errors.Is(err, ErrProfileNotFound) {
		created := Profile{
			UserID:              user.ID,
			DisplayName:         defaultDisplayName(user.Username),
			PrivacyShowSocial:   true,
			PrivacyAllowContact: true,
		}
		applyPatch(&created, patch)
		if err := s.repo.CreateProfile(ctx, &created); err != nil {
			return nil, err
		}
		return &created, nil
	}
	if err != nil {
		return nil, err
	}

	fields := patch.fields()
	if len(fields) == 0 {
		return profile, nil
	}
	if err := s.repo.UpdateProfile(ctx, user.ID, fields); err != nil {
		return nil, err
	}

	return s.repo.GetProfile(ctx, user.ID)
}

// CreateInvite issues a single-use invite code. Admin only.
func (s *Service) CreateInvite(ctx context.Context, actor *User, email string) (*Invite, error) {
	if err := RequireRole(actor, RoleAdmin); err != nil {
		return nil, err
	}

	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}

	code, err := s.generateUniqueCode(ctx)
	if err != nil {
		return nil, err
	}

	invite := Invite{
		Email:            email,
		Code:             code,
		CreatedByAdminID: &actor.ID,
	}
	if err := s.repo.CreateInvite(ctx, &invite); err != nil {
		return nil, err
	}

	return &invite, nil
}

// ListInvites returns all invites, newest first. Admin only.
func (s *Service) ListInvites(ctx context.Context, actor *User) ([]Invite, error) {
	if err := RequireRole(actor, RoleAdmin); err != nil {
		return nil, err
	}
	return s.repo.ListInvites(ctx)
}

// EnsureAdmin creates the bootstrap admin account if the username is
// free. Reports whether a user was created.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) (*User, bool, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, false, fmt.Errorf("admin username and password are required")
	}

	existing, err := s.repo.GetUserByUsername(ctx, username)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, false, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, false, err
	}

	var admin User
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		admin = User{
			Username:     username,
			PasswordHash: hash,
			Role:         RoleAdmin,
		}
		if err := tx.CreateUser(ctx, &admin); err != nil {
			return err
		}
		return tx.CreateProfile(ctx, &Profile{
			UserID:              admin.ID,
			DisplayName:         defaultDisplayName(username),
			PrivacyShowSocial:   true,
			PrivacyAllowContact: true,
		})
	})
	if err != nil {
		return nil, false, err
	}

	return &admin, true, nil
}

func (s *Service) generateUniqueCode(ctx context.Context) (string, error) {
	for i := 0; i < inviteCodeAttempts; i++ {
		code, err := generateCode(inviteCodeLength)
		if err != nil {
			return "", err
		}
		taken, err := s.repo.IsInviteCodeTaken(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrCodeGenerationFailed
}

// generateCode builds a short human-typable code. The alphabet drops
// 0/O and 1/I to avoid transcription mistakes.
func generateCode(length int) (string, error) {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	max := big.NewInt(int64(len(alphabet)))

	var builder strings.Builder
	builder.Grow(length)

	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		builder.WriteByte(alphabet[n.Int64()])
	}

	return builder.String(), nil
}

func generateSecureToken(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// defaultDisplayName derives the initial display name from the part of
// the username before the "@".
func defaultDisplayName(username string) string {
	name, _, _ := strings.Cut(username, "@")
	if name == "" {
		return username
	}
	return name
}

func applyPatch(profile *Profile, patch ProfilePatch) {
	if patch.DisplayName != nil {
		profile.DisplayName = *patch.DisplayName
	}
	profile.Bio = orKeep(profile.Bio, patch.Bio)
	profile.Location = orKeep(profile.Location, patch.Location)
	profile.ProfileImageURL = orKeep(profile.ProfileImageURL, patch.ProfileImageURL)
	profile.LinkedinURL = orKeep(profile.LinkedinURL, patch.LinkedinURL)
	profile.InstagramURL = orKeep(profile.InstagramURL, patch.InstagramURL)
	profile.FacebookURL = orKeep(profile.FacebookURL, patch.FacebookURL)
	profile.XURL = orKeep(profile.XURL, patch.XURL)
	profile.TiktokURL = orKeep(profile.TiktokURL, patch.TiktokURL)
	profile.YoutubeURL = orKeep(profile.YoutubeURL, patch.YoutubeURL)
	profile.WebsiteURL = orKeep(profile.WebsiteURL, patch.WebsiteURL)
	if patch.PrivacyShowSocial != nil {
		profile.PrivacyShowSocial = *patch.PrivacyShowSocial
	}
	if patch.PrivacyAllowContact != nil {
		profile.PrivacyAllowContact = *patch.PrivacyAllowContact
	}
}

func orKeep(current, patch *string) *string {
	if patch != nil {
		return patch
	}
	return current
}
