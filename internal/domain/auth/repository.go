package auth

import (
	"context"
	"time"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error

	GetUser(ctx context.Context, id int) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	CreateUser(ctx context.Context, user *User) error

	GetProfile(ctx context.Context, userID int) (*Profile, error)
	CreateProfile(ctx context.Context, profile *Profile) error
	UpdateProfile(ctx context.Context, userID int, fields map[string]interface{}) error

	GetInviteByCode(ctx context.Context, code string) (*Invite, error)
	CreateInvite(ctx context.Context, invite *Invite) error
	ListInvites(ctx context.Context) ([]Invite, error)
	MarkInviteUsed(ctx context.Context, id int, usedAt time.Time) error
	IsInviteCodeTaken(ctx context.Context, code string) (bool, error)

	CreateSession(ctx context.Context, session *Session) error
	GetSession(ctx context.Context, token string) (*Session, error)
	DeleteSession(ctx context.Context, token string) error
}
