package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeAuthRepo struct {
	users    map[int]*User
	profiles map[int]*Profile
	invites  map[int]*Invite
	sessions map[string]*Session
	nextID   int

	failCreateProfile bool
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{
		users:    make(map[int]*User),
		profiles: make(map[int]*Profile),
		invites:  make(map[int]*Invite),
		sessions: make(map[string]*Session),
	}
}

func (r *fakeAuthRepo) allocID() int {
	r.nextID++
	return r.nextID
}

func (r *fakeAuthRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	users := copyUserMap(r.users)
	profiles := copyProfileMap(r.profiles)
	invites := copyInviteMap(r.invites)
	nextID := r.nextID

	if err := fn(r); err != nil {
		r.users = users
		r.profiles = profiles
		r.invites = invites
		r.nextID = nextID
		return err
	}
	return nil
}

func (r *fakeAuthRepo) GetUser(ctx context.Context, id int) (*User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeAuthRepo) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	for _, user := range r.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *fakeAuthRepo) CreateUser(ctx context.Context, user *User) error {
	user.ID = r.allocID()
	user.CreatedAt = time.Now().UTC()
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeAuthRepo) GetProfile(ctx context.Context, userID int) (*Profile, error) {
	profile, ok := r.profiles[userID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	copied := *profile
	return &copied, nil
}

func (r *fakeAuthRepo) CreateProfile(ctx context.Context, profile *Profile) error {
	if r.failCreateProfile {
		return errors.New("create profile failed")
	}
	profile.ID = r.allocID()
	copied := *profile
	r.profiles[profile.UserID] = &copied
	return nil
}

func (r *fakeAuthRepo) UpdateProfile(ctx context.Context, userID int, fields map[string]interface{}) error {
	profile, ok := r.profiles[userID]
	if !ok {
		return ErrProfileNotFound
	}
	for column, value := range fields {
		switch column {
		case "display_name":
			profile.DisplayName = value.(string)
		case "bio":
			v := value.(string)
			profile.Bio = &v
		case "location":
			v := value.(string)
			profile.Location = &v
		case "website_url":
			v := value.(string)
			profile.WebsiteURL = &v
		case "privacy_show_social":
			profile.PrivacyShowSocial = value.(bool)
		case "privacy_allow_contact":
			profile.PrivacyAllowContact = value.(bool)
		}
	}
	return nil
}

func (r *fakeAuthRepo) GetInviteByCode(ctx context.Context, code string) (*Invite, error) {
	for _, invite := range r.invites {
		if invite.Code == code {
			copied := *invite
			return &copied, nil
		}
	}
	return nil, ErrInvalidInvite
}

func (r *fakeAuthRepo) CreateInvite(ctx context.Context, invite *Invite) error {
	invite.ID = r.allocID()
	invite.CreatedAt = time.Now().UTC()
	copied := *invite
	r.invites[invite.ID] = &copied
	return nil
}

func (r *fakeAuthRepo) ListInvites(ctx context.Context) ([]Invite, error) {
	result := make([]Invite, 0, len(r.invites))
	for _, invite := range r.invites {
		result = append(result, *invite)
	}
	return result, nil
}

func (r *fakeAuthRepo) MarkInviteUsed(ctx context.Context, id int, usedAt time.Time) error {
	invite, ok := r.invites[id]
	if !ok {
		return ErrInvalidInvite
	}
	invite.UsedAt = &usedAt
	return nil
}

func (r *fakeAuthRepo) IsInviteCodeTaken(ctx context.Context, code string) (bool, error) {
	for _, invite := range r.invites {
		if invite.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAuthRepo) CreateSession(ctx context.Context, session *Session) error {
	copied := *session
	r.sessions[session.Token] = &copied
	return nil
}

func (r *fakeAuthRepo) GetSession(ctx context.Context, token string) (*Session, error) {
	session, ok := r.sessions[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	copied := *session
	return &copied, nil
}

func (r *fakeAuthRepo) DeleteSession(ctx context.Context, token string) error {
	delete(r.sessions, token)
	return nil
}

func copyUserMap(src map[int]*User) map[int]*User {
	dst := make(map[int]*User, len(src))
	for key, value := range src {
		copied := *value
		dst[key] = &copied
	}
	return dst
}

func copyProfileMap(src map[int]*Profile) map[int]*Profile {
	dst := make(map[int]*Profile, len(src))
	for key, value := range src {
		copied := *value
		dst[key] = &copied
	}
	return dst
}

func copyInviteMap(src map[int]*Invite) map[int]*Invite {
	dst := make(map[int]*Invite, len(src))
	for key, value := range src {
		copied := *value
		dst[key] = &copied
	}
	return dst
}

func (r *fakeAuthRepo) addInvite(t *testing.T, email, code string) *Invite {
	t.Helper()
	invite := &Invite{Email: email, Code: code}
	if err := r.CreateInvite(context.Background(), invite); err != nil {
		t.Fatalf("seed invite: %v", err)
	}
	return invite
}

func TestRegisterSuccess(t *testing.T) {
	repo := newFakeAuthRepo()
	repo.addInvite(t, "ana@example.com", "ABCD2345")
	svc := NewService(repo, time.Hour)

	user, err := svc.Register(context.Background(), "ana@example.com", "password123", "abcd2345")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user.Role != RoleMember {
		t.Fatalf("expected member role, got %q", user.Role)
	}
	if user.PasswordHash == "password123" || user.PasswordHash == "" {
		t.Fatalf("expected password to be hashed")
	}

	profile := repo.profiles[user.ID]
	if profile == nil {
		t.Fatalf("expected default profile created")
	}
	if profile.DisplayName != "ana" {
		t.Fatalf("expected display name derived from username, got %q", profile.DisplayName)
	}
	if !profile.PrivacyShowSocial || !profile.PrivacyAllowContact {
		t.Fatalf("expected permissive privacy defaults")
	}

	invite, _ := repo.GetInviteByCode(context.Background(), "ABCD2345")
	if invite.UsedAt == nil {
		t.Fatalf("expected invite marked used")
	}
}

func TestRegisterUsernameTaken(t *testing.T) {
	repo := newFakeAuthRepo()
	repo.addInvite(t, "ana@example.com", "ABCD2345")
	svc := NewService(repo, time.Hour)

	if _, err := svc.Register(context.Background(), "ana@example.com", "password123", "ABCD2345"); err != nil {
		t.Fatalf("first register: %v", err)
	}

	second := repo.addInvite(t, "ana@example.com", "EFGH6789")
	_, err := svc.Register(context.Background(), "ana@example.com", "password123", "EFGH6789")
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
	if repo.invites[second.ID].UsedAt != nil {
		t.Fatalf("failed registration must not consume the invite")
	}
}

func TestRegisterInvalidInvite(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := NewService(repo, time.Hour)

	_, err := svc.Register(context.Background(), "ana@example.com", "password123", "NOPE2345")
	if !errors.Is(err, ErrInvalidInvite) {
		t.Fatalf("expected ErrInvalidInvite for unknown code, got %v", err)
	}
	if len(repo.users) != 0 {
		t.Fatalf("expected no user created")
	}
}

func TestRegisterInviteSingleUse(t *testing.T) {
	repo := newFakeAuthRepo()
	repo.addInvite(t, "ana@example.com", "ABCD2345")
	svc := NewService(repo, time.Hour)

	if _, err := svc.Register(context.Background(), "ana@example.com", "password123", "ABCD2345"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := svc.Register(context.Background(), "ben@example.com", "password123", "ABCD2345")
	if !errors.Is(err, ErrInvalidInvite) {
		t.Fatalf("expected ErrInvalidInvite for used code, got %v", err)
	}
}

func TestRegisterRollsBackOnProfileFailure(t *testing.T) {
	repo := newFakeAuthRepo()
	invite := repo.addInvite(t, "ana@example.com", "ABCD2345")
	repo.failCreateProfile = true
	svc := NewService(repo, time.Hour)

	_, err := svc.Register(context.Background(), "ana@example.com", "password123", "ABCD2345")
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(repo.users) != 0 {
		t.Fatalf("expected user creation rolled back")
	}
	if repo.invites[invite.ID].UsedAt != nil {
		t.Fatalf("expected invite left unused after rollback")
	}
}

func TestLoginSuccess(t *testing.T) {
	repo := newFakeAuthRepo()
	repo.addInvite(t, "ana@example.com", "ABCD2345")
	svc := NewService(repo, time.Hour)

	registered, err := svc.Register(context.Background(), "ana@example.com", "password123", "ABCD2345")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	user, session, err := svc.Login(context.Background(), "ana@example.com", "password123")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user.ID != registered.ID {
		t.Fatalf("expected user %d, got %d", registered.ID, user.ID)
	}
	if len(session.Token) != 64 {
		t.Fatalf("expected 32-byte hex token, got %d chars", len(session.Token))
	}
	if !session.ExpiresAt.After(session.CreatedAt) {
		t.Fatalf("expected expiry after creation")
	}
	if repo.sessions[session.Token] == nil {
		t.Fatalf("expected session persisted")
	}
}

func TestLoginFailuresAreUniform(t *testing.T) {
	repo := newFakeAuthRepo()
	repo.addInvite(t, "ana@example.com", "ABCD2345")
	svc := NewService(repo, time.Hour)

	if _, err := svc.Register(context.Background(), "ana@example.com", "password123", "ABCD2345"); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, _, unknownErr := svc.Login(context.Background(), "nobody@example.com", "password123")
	_, _, wrongErr := svc.Login(context.Background(), "ana@example.com", "wrong")
	if !errors.Is(unknownErr, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", unknownErr)
	}
	if !errors.Is(wrongErr, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", wrongErr)
	}
}

func TestCurrentUserSessionLifecycle(t *testing.T) {
	repo := newFakeAuthRepo()
	repo.addInvite(t, "ana@example.com", "ABCD2345")
	svc := NewService(repo, time.Hour)

	registered, err := svc.Register(context.Background(), "ana@example.com", "password123", "ABCD2345")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	_, session, err := svc.Login(context.Background(), "ana@example.com", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	user, err := svc.CurrentUser(context.Background(), session.Token)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user.ID != registered.ID {
		t.Fatalf("expected user %d, got %d", registered.ID, user.ID)
	}

	if err := svc.Logout(context.Background(), session.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.CurrentUser(context.Background(), session.Token); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after logout, got %v", err)
	}
}

func TestCurrentUserExpiredSession(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := NewService(repo, time.Hour)

	repo.sessions["expired"] = &Session{
		Token:     "expired",
		UserID:    1,
		CreatedAt: time.Now().UTC().Add(-2 * time.Hour),
		ExpiresAt: time.Now().UTC().Add(-time.Hour),
	}

	if _, err := svc.CurrentUser(context.Background(), "expired"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if repo.sessions["expired"] != nil {
		t.Fatalf("expected expired session deleted")
	}
}

func TestLogoutUnknownTokenIsNoop(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := NewService(repo, time.Hour)

	if err := svc.Logout(context.Background(), ""); err != nil {
		t.Fatalf("expected no error for empty token, got %v", err)
	}
	if err := svc.Logout(context.Background(), "never-issued"); err != nil {
		t.Fatalf("expected no error for unknown token, got %v", err)
	}
}

func TestUpdateProfilePartialPatch(t *testing.T) {
	repo := newFakeAuthRepo()
	repo.addInvite(t, "ana@example.com", "ABCD2345")
	svc := NewService(repo, time.Hour)

	user, err := svc.Register(context.Background(), "ana@example.com", "password123", "ABCD2345")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	bio := "genealogist"
	show := false
	profile, err := svc.UpdateProfile(context.Background(), user, ProfilePatch{Bio: &bio, PrivacyShowSocial: &show})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if profile.Bio == nil || *profile.Bio != "genealogist" {
		t.Fatalf("expected bio set, got %+v", profile.Bio)
	}
	if profile.PrivacyShowSocial {
		t.Fatalf("expected privacy flag cleared")
	}
	if profile.DisplayName != "ana" {
		t.Fatalf("expected untouched display name, got %q", profile.DisplayName)
	}
}

func TestUpdateProfileCreatesMissingRow(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := NewService(repo, time.Hour)

	user := &User{ID: 99, Username: "ben@example.com", Role: RoleMember}
	repo.users[99] = user

	location := "Lisbon"
	profile, err := svc.UpdateProfile(context.Background(), user, ProfilePatch{Location: &location})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if profile.DisplayName != "ben" {
		t.Fatalf("expected derived display name, got %q", profile.DisplayName)
	}
	if profile.Location == nil || *profile.Location != "Lisbon" {
		t.Fatalf("expected location applied, got %+v", profile.Location)
	}
}

func TestCreateInviteRequiresAdmin(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := NewService(repo, time.Hour)

	member := &User{ID: 1, Role: RoleMember}
	if _, err := svc.CreateInvite(context.Background(), member, "new@example.com"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for member, got %v", err)
	}
	if _, err := svc.ListInvites(context.Background(), member); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for member list, got %v", err)
	}
	if _, err := svc.CreateInvite(context.Background(), nil, "new@example.com"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for nil actor, got %v", err)
	}
}

func TestCreateInviteSuccess(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := NewService(repo, time.Hour)

	admin := &User{ID: 1, Role: RoleAdmin}
	invite, err := svc.CreateInvite(context.Background(), admin, "new@example.com")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(invite.Code) != 8 {
		t.Fatalf("expected 8-char code, got %q", invite.Code)
	}
	for _, c := range invite.Code {
		if c == '0' || c == 'O' || c == '1' || c == 'I' {
			t.Fatalf("code %q contains ambiguous character %q", invite.Code, c)
		}
	}
	if invite.CreatedByAdminID == nil || *invite.CreatedByAdminID != admin.ID {
		t.Fatalf("expected issuing admin recorded")
	}
	if invite.UsedAt != nil {
		t.Fatalf("expected fresh invite unused")
	}
}

func TestEnsureAdmin(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := NewService(repo, time.Hour)

	admin, created, err := svc.EnsureAdmin(context.Background(), "root@example.com", "password123")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !created {
		t.Fatalf("expected admin created on first call")
	}
	if admin.Role != RoleAdmin {
		t.Fatalf("expected admin role, got %q", admin.Role)
	}
	if repo.profiles[admin.ID] == nil {
		t.Fatalf("expected admin profile created")
	}

	again, created, err := svc.EnsureAdmin(context.Background(), "root@example.com", "password123")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if created {
		t.Fatalf("expected second call to reuse existing account")
	}
	if again.ID != admin.ID {
		t.Fatalf("expected same account, got %d and %d", admin.ID, again.ID)
	}
}
