package directory

import (
	"time"

	"github.com/lib/pq"
)

const (
	RelationshipParent  = "PARENT"
	RelationshipChild   = "CHILD"
	RelationshipSpouse  = "SPOUSE"
	RelationshipPartner = "PARTNER"
	RelationshipSibling = "SIBLING"
)

const (
	MediaPhoto = "PHOTO"
	MediaVideo = "VIDEO"
)

// Person is a genealogical record, distinct from a User account. A
// Person may optionally link to a registered User.
type Person struct {
	ID              int `gorm:"primaryKey"`
	CreatedByUserID *int
	FullName        string `gorm:"not null"`
	Nickname        *string
	MaidenName      *string
	Gender          *string
	IsLiving        bool       `gorm:"not null;default:true"`
	BirthDate       *time.Time `gorm:"type:date"`
	DeathDate       *time.Time `gorm:"type:date"`
	BirthPlace      *string
	CurrentCity     *string
	Biography       *string
	CulturalNotes   *string
	Tags            pq.StringArray `gorm:"type:text[]"`
	LinkedUserID    *int
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
}

func (Person) TableName() string { return "people" }

// Relationship is a directed edge between two people. No inverse edge
// is created automatically.
type Relationship struct {
	ID              int    `gorm:"primaryKey"`
	FromPersonID    int    `gorm:"not null;index"`
	ToPersonID      int    `gorm:"not null;index"`
	Type            string `gorm:"type:varchar(16);not null"`
	CreatedByUserID *int
	CreatedAt       time.Time `gorm:"autoCreateTime"`
}

type Media struct {
	ID             int    `gorm:"primaryKey"`
	PersonID       int    `gorm:"not null;index"`
	UploaderUserID *int
	Type           string `gorm:"type:varchar(16);not null"`
	URL            string `gorm:"not null"`
	Caption        *string
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

func (Media) TableName() string { return "media" }

// PersonDetail is the composite read: the person plus its media and
// both directions of its relationships.
type PersonDetail struct {
	Person            Person
	Media             []Media
	RelationshipsFrom []Relationship
	RelationshipsTo   []Relationship
}

func ValidRelationshipType(value string) bool {
	switch value {
	case RelationshipParent, RelationshipChild, RelationshipSpouse, RelationshipPartner, RelationshipSibling:
		return true
	}
	return false
}

func ValidMediaType(value string) bool {
	return value == MediaPhoto || value == MediaVideo
}
