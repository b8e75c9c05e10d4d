package directory

import "context"

// ListPeopleFilter narrows a people listing. Zero values mean "no
// filter". Search is matched case-insensitively against full and
// maiden names.
type ListPeopleFilter struct {
	Search string
	Tag    string
	Living *bool
}

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error

	GetPerson(ctx context.Context, id int) (*Person, error)
	PersonExists(ctx context.Context, id int) (bool, error)
	ListPeople(ctx context.Context, filter ListPeopleFilter) ([]Person, error)
	CreatePerson(ctx context.Context, person *Person) error
	UpdatePerson(ctx context.Context, id int, fields map[string]interface{}) error
	DeletePerson(ctx context.Context, id int) error

	ListRelationshipsFrom(ctx context.Context, personID int) ([]Relationship, error)
	ListRelationshipsTo(ctx context.Context, personID int) ([]Relationship, error)
	CreateRelationship(ctx context.Context, rel *Relationship) error
	DeleteRelationship(ctx context.Context, id int) (bool, error)
	DeleteRelationshipsForPerson(ctx context.Context, personID int) error

	ListMediaForPerson(ctx context.Context, personID int) ([]Media, error)
	CreateMedia(ctx context.Context, media *Media) error
	DeleteMedia(ctx context.Context, id int) (bool, error)
	DeleteMediaForPerson(ctx context.Context, personID int) error
}
