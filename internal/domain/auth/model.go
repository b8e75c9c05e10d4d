package auth

import "time"

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

type User struct {
	ID           int       `gorm:"primaryKey"`
	Username     string    `gorm:"not null;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Role         string    `gorm:"type:varchar(16);not null;default:member"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

type Profile struct {
	ID              int     `gorm:"primaryKey"`
	UserID          int     `gorm:"not null;uniqueIndex"`
	DisplayName     string  `gorm:"not null"`
	Bio             *string
	Location        *string
	ProfileImageURL *string `gorm:"column:profile_image_url"`

	LinkedinURL  *string `gorm:"column:linkedin_url"`
	InstagramURL *string `gorm:"column:instagram_url"`
	FacebookURL  *string `gorm:"column:facebook_url"`
	XURL         *string `gorm:"column:x_url"`
	TiktokURL    *string `gorm:"column:tiktok_url"`
	YoutubeURL   *string `gorm:"column:youtube_url"`
	WebsiteURL   *string `gorm:"column:website_url"`

	PrivacyShowSocial   bool `gorm:"not null;default:true"`
	PrivacyAllowContact bool `gorm:"not null;default:true"`
}

func (Profile) TableName() string { return "user_profiles" }

// Invite gates self-registration. A row with UsedAt set is inert.
type Invite struct {
	ID               int    `gorm:"primaryKey"`
	Email            string `gorm:"not null"`
	Code             string `gorm:"not null;uniqueIndex"`
	CreatedByAdminID *int
	UsedAt           *time.Time
	CreatedAt        time.Time `gorm:"autoCreateTime"`
}

// Session is an opaque server-side session. The token is the only
// thing the client ever sees.
type Session struct {
	Token     string `gorm:"primaryKey"`
	UserID    int    `gorm:"not null;index"`
	CreatedAt time.Time
	ExpiresAt time.Time `gorm:"not null"`
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
