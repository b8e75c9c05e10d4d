package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	authdomain "family-directory-go/internal/domain/auth"
)

// AuthRepository is a map-backed auth store. It backs handler tests and
// local development without Postgres.
type AuthRepository struct {
	mu       sync.Mutex
	txMu     sync.Mutex
	users    map[int]authdomain.User
	profiles map[int]authdomain.Profile
	invites  map[int]authdomain.Invite
	sessions map[string]authdomain.Session
	nextID   int
}

func NewAuthRepository() *AuthRepository {
	return &AuthRepository{
		users:    make(map[int]authdomain.User),
		profiles: make(map[int]authdomain.Profile),
		invites:  make(map[int]authdomain.Invite),
		sessions: make(map[string]authdomain.Session),
		nextID:   1,
	}
}

func (r *AuthRepository) allocID() int {
	id := r.nextID
	r.nextID++
	return id
}

// Transaction runs fn against the repository, restoring a snapshot of
// all state when fn fails. txMu serializes transactions so a rollback
// cannot discard a concurrent transaction's committed writes.
func (r *AuthRepository) Transaction(ctx context.Context, fn func(authdomain.Repository) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	r.mu.Lock()
	snapshot := r.snapshotLocked()
	r.mu.Unlock()

	if err := fn(r); err != nil {
		r.mu.Lock()
		r.restoreLocked(snapshot)
		r.mu.Unlock()
		return err
	}
	return nil
}

type authSnapshot struct {
	users    map[int]authdomain.User
	profiles map[int]authdomain.Profile
	invites  map[int]authdomain.Invite
	sessions map[string]authdomain.Session
	nextID   int
}

func (r *AuthRepository) snapshotLocked() authSnapshot {
	return authSnapshot{
		users:    copyMap(r.users),
		profiles: copyMap(r.profiles),
		invites:  copyMap(r.invites),
		sessions: copyMap(r.sessions),
		nextID:   r.nextID,
	}
}

func (r *AuthRepository) restoreLocked(s authSnapshot) {
	r.users = s.users
	r.profiles = s.profiles
	r.invites = s.invites
	r.sessions = s.sessions
	r.nextID = s.nextID
}

func (r *AuthRepository) GetUser(ctx context.Context, id int) (*authdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, authdomain.ErrUserNotFound
	}
	return &user, nil
}

func (r *AuthRepository) GetUserByUsername(ctx context.Context, username string) (*authdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username == username {
			u := user
			return &u, nil
		}
	}
	return nil, authdomain.ErrUserNotFound
}

func (r *AuthRepository) CreateUser(ctx context.Context, user *authdomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = r.allocID()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	r.users[user.ID] = *user
	return nil
}

func (r *AuthRepository) GetProfile(ctx context.Context, userID int) (*authdomain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, profile := range r.profiles {
		if profile.UserID == userID {
			p := profile
			return &p, nil
		}
	}
	return nil, authdomain.ErrProfileNotFound
}

func (r *AuthRepository) CreateProfile(ctx context.Context, profile *authdomain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	profile.ID = r.allocID()
	r.profiles[profile.ID] = *profile
	return nil
}

func (r *AuthRepository) UpdateProfile(ctx context.Context, userID int, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, profile := range r.profiles {
		if profile.UserID != userID {
			continue
		}
		applyProfileFields(&profile, fields)
		r.profiles[id] = profile
		return nil
	}
	return authdomain.ErrProfileNotFound
}

func (r *AuthRepository) GetInviteByCode(ctx context.Context, code string) (*authdomain.Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, invite := range r.invites {
		if invite.Code == code {
			i := invite
			return &i, nil
		}
	}
	return nil, authdomain.ErrInvalidInvite
}

func (r *AuthRepository) CreateInvite(ctx context.Context, invite *authdomain.Invite) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	invite.ID = r.allocID()
	if invite.CreatedAt.IsZero() {
		invite.CreatedAt = time.Now().UTC()
	}
	r.invites[invite.ID] = *invite
	return nil
}

func (r *AuthRepository) ListInvites(ctx context.Context) ([]authdomain.Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	invites := make([]authdomain.Invite, 0, len(r.invites))
	for _, invite := range r.invites {
		invites = append(invites, invite)
	}
	// newest first, matching the postgres repository
	sort.Slice(invites, func(i, j int) bool {
		if !invites[i].CreatedAt.Equal(invites[j].CreatedAt) {
			return invites[i].CreatedAt.After(invites[j].CreatedAt)
		}
		return invites[i].ID > invites[j].ID
	})
	return invites, nil
}

func (r *AuthRepository) MarkInviteUsed(ctx context.Context, id int, usedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	invite, ok := r.invites[id]
	if !ok {
		return authdomain.ErrInvalidInvite
	}
	invite.UsedAt = &usedAt
	r.invites[id] = invite
	return nil
}

func (r *AuthRepository) IsInviteCodeTaken(ctx context.Context, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, invite := range r.invites {
		if invite.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (r *AuthRepository) CreateSession(ctx context.Context, session *authdomain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.Token] = *session
	return nil
}

func (r *AuthRepository) GetSession(ctx context.Context, token string) (*authdomain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[token]
	if !ok {
		return nil, authdomain.ErrSessionNotFound
	}
	return &session, nil
}

func (r *AuthRepository) DeleteSession(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, token)
	return nil
}

func applyProfileFields(profile *authdomain.Profile, fields map[string]interface{}) {
	for column, value := range fields {
		switch column {
		case "display_name":
			profile.DisplayName = value.(string)
		case "bio":
			profile.Bio = strPtr(value)
		case "location":
			profile.Location = strPtr(value)
		case "profile_image_url":
			profile.ProfileImageURL = strPtr(value)
		case "linkedin_url":
			profile.LinkedinURL = strPtr(value)
		case "instagram_url":
			profile.InstagramURL = strPtr(value)
		case "facebook_url":
			profile.FacebookURL = strPtr(value)
		case "x_url":
			profile.XURL = strPtr(value)
		case "tiktok_url":
			profile.TiktokURL = strPtr(value)
		case "youtube_url":
			profile.YoutubeURL = strPtr(value)
		case "website_url":
			profile.WebsiteURL = strPtr(value)
		case "privacy_show_social":
			profile.PrivacyShowSocial = value.(bool)
		case "privacy_allow_contact":
			profile.PrivacyAllowContact = value.(bool)
		}
	}
}

func strPtr(value interface{}) *string {
	s := value.(string)
	return &s
}

func copyMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
