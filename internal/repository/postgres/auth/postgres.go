package auth

import (
	"context"
	"errors"
	"time"

	authdomain "family-directory-go/internal/domain/auth"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(authdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) GetUser(ctx context.Context, id int) (*authdomain.User, error) {
	var user authdomain.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, authdomain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *PostgresRepository) GetUserByUsername(ctx context.Context, username string) (*authdomain.User, error) {
	var user authdomain.User
	if err := r.db.WithContext(ctx).First(&user, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, authdomain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *PostgresRepository) CreateUser(ctx context.Context, user *authdomain.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *PostgresRepository) GetProfile(ctx context.Context, userID int) (*authdomain.Profile, error) {
	var profile authdomain.Profile
	if err := r.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, authdomain.ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *PostgresRepository) CreateProfile(ctx context.Context, profile *authdomain.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, userID int, fields map[string]interface{}) error {
	tx := r.db.WithContext(ctx).Model(&authdomain.Profile{}).Where("user_id = ?", userID).Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return authdomain.ErrProfileNotFound
	}
	return nil
}

func (r *PostgresRepository) GetInviteByCode(ctx context.Context, code string) (*authdomain.Invite, error) {
	var invite authdomain.Invite
	if err := r.db.WithContext(ctx).First(&invite, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, authdomain.ErrInvalidInvite
		}
		return nil, err
	}
	return &invite, nil
}

func (r *PostgresRepository) CreateInvite(ctx context.Context, invite *authdomain.Invite) error {
	return r.db.WithContext(ctx).Create(invite).Error
}

func (r *PostgresRepository) ListInvites(ctx context.Context) ([]authdomain.Invite, error) {
	var invites []authdomain.Invite
	if err := r.db.WithContext(ctx).Order("created_at desc").Find(&invites).Error; err != nil {
		return nil, err
	}
	return invites, nil
}

func (r *PostgresRepository) MarkInviteUsed(ctx context.Context, id int, usedAt time.Time) error {
	tx := r.db.WithContext(ctx).Model(&authdomain.Invite{}).Where("id = ?", id).Update("used_at", usedAt)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return authdomain.ErrInvalidInvite
	}
	return nil
}

func (r *PostgresRepository) IsInviteCodeTaken(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&authdomain.Invite{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) CreateSession(ctx context.Context, session *authdomain.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *PostgresRepository) GetSession(ctx context.Context, token string) (*authdomain.Session, error) {
	var session authdomain.Session
	if err := r.db.WithContext(ctx).First(&session, "token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, authdomain.ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (r *PostgresRepository) DeleteSession(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Delete(&authdomain.Session{}, "token = ?", token).Error
}
