package directory

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ObjectStorage issues presigned upload URLs for media files. Optional;
// a nil storage disables upload URL issuing.
type ObjectStorage interface {
	PresignUpload(ctx context.Context, objectName, contentType string) (uploadURL, publicURL string, err error)
}

type Service struct {
	repo    Repository
	storage ObjectStorage
}

func NewService(repo Repository, storage ObjectStorage) *Service {
	return &Service{repo: repo, storage: storage}
}

// PersonInput carries the caller-supplied fields for a new person.
type PersonInput struct {
	FullName      string
	Nickname      *string
	MaidenName    *string
	Gender        *string
	IsLiving      *bool
	BirthDate     *time.Time
	DeathDate     *time.Time
	BirthPlace    *string
	CurrentCity   *string
	Biography     *string
	CulturalNotes *string
	Tags          []string
	LinkedUserID  *int
}

func (s *Service) CreatePerson(ctx context.Context, actorUserID int, input PersonInput) (*Person, error) {
	input.FullName = strings.TrimSpace(input.FullName)
	if input.FullName == "" {
		return nil, ErrFullNameRequired
	}

	living := true
	if input.IsLiving != nil {
		living = *input.IsLiving
	}

	person := Person{
		CreatedByUserID: &actorUserID,
		FullName:        input.FullName,
		Nickname:        input.Nickname,
		MaidenName:      input.MaidenName,
		Gender:          input.Gender,
		IsLiving:        living,
		BirthDate:       input.BirthDate,
		DeathDate:       input.DeathDate,
		BirthPlace:      input.BirthPlace,
		CurrentCity:     input.CurrentCity,
		Biography:       input.Biography,
		CulturalNotes:   input.CulturalNotes,
		Tags:            toStringArray(input.Tags),
		LinkedUserID:    input.LinkedUserID,
	}
	if err := s.repo.CreatePerson(ctx, &person); err != nil {
		return nil, err
	}

	return &person, nil
}

// GetPerson assembles the composite view: person, media, and
// relationships in both directions.
func (s *Service) GetPerson(ctx context.Context, id int) (*PersonDetail, error) {
	person, err := s.repo.GetPerson(ctx, id)
	if err != nil {
		return nil, err
	}

	media, err := s.repo.ListMediaForPerson(ctx, id)
	if err != nil {
		return nil, err
	}
	from, err := s.repo.ListRelationshipsFrom(ctx, id)
	if err != nil {
		return nil, err
	}
	to, err := s.repo.ListRelationshipsTo(ctx, id)
	if err != nil {
		return nil, err
	}

	return &PersonDetail{
		Person:            *person,
		Media:             media,
		RelationshipsFrom: from,
		RelationshipsTo:   to,
	}, nil
}

func (s *Service) ListPeople(ctx context.Context, filter ListPeopleFilter) ([]Person, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	filter.Tag = strings.TrimSpace(filter.Tag)
	return s.repo.ListPeople(ctx, filter)
}

// PersonPatch is a partial person update. Nil fields are untouched.
type PersonPatch struct {
	FullName      *string
	Nickname      *string
	MaidenName    *string
	Gender        *string
	IsLiving      *bool
	BirthDate     *time.Time
	DeathDate     *time.Time
	BirthPlace    *string
	CurrentCity   *string
	Biography     *string
	CulturalNotes *string
	Tags          *[]string
	LinkedUserID  *int
}

func (s *Service) UpdatePerson(ctx context.Context, id int, patch PersonPatch) (*Person, error) {
	if patch.FullName != nil && strings.TrimSpace(*patch.FullName) == "" {
		return nil, ErrFullNameRequired
	}

	fields := map[string]interface{}{}
	setString := func(column string, value *string) {
		if value != nil {
			fields[column] = *value
		}
	}
	if patch.FullName != nil {
		fields["full_name"] = strings.TrimSpace(*patch.FullName)
	}
	setString("nickname", patch.Nickname)
	setString("maiden_name", patch.MaidenName)
	setString("gender", patch.Gender)
	setString("birth_place", patch.BirthPlace)
	setString("current_city", patch.CurrentCity)
	setString("biography", patch.Biography)
	setString("cultural_notes", patch.CulturalNotes)
	if patch.IsLiving != nil {
		fields["is_living"] = *patch.IsLiving
	}
	if patch.BirthDate != nil {
		fields["birth_date"] = *patch.BirthDate
	}
	if patch.DeathDate != nil {
		fields["death_date"] = *patch.DeathDate
	}
	if patch.Tags != nil {
		fields["tags"] = toStringArray(*patch.Tags)
	}
	if patch.LinkedUserID != nil {
		fields["linked_user_id"] = *patch.LinkedUserID
	}

	// An empty patch touches nothing, including updated_at.
	if len(fields) == 0 {
		return s.repo.GetPerson(ctx, id)
	}
	fields["updated_at"] = time.Now().UTC()

	if err := s.repo.UpdatePerson(ctx, id, fields); err != nil {
		return nil, err
	}

	return s.repo.GetPerson(ctx, id)
}

// DeletePerson removes a person together with its media and every
// relationship touching it, in one transaction. Cascading avoids the
// dangling foreign keys a bare row delete would leave behind.
func (s *Service) DeletePerson(ctx context.Context, id int) error {
	return s.repo.Transaction(ctx, func(tx Repository) error {
		exists, err := tx.PersonExists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return ErrPersonNotFound
		}

		if err := tx.DeleteMediaForPerson(ctx, id); err != nil {
			return err
		}
		if err := tx.DeleteRelationshipsForPerson(ctx, id); err != nil {
			return err
		}
		return tx.DeletePerson(ctx, id)
	})
}

func (s *Service) CreateRelationship(ctx context.Context, actorUserID, fromPersonID, toPersonID int, relType string) (*Relationship, error) {
	if !ValidRelationshipType(relType) {
		return nil, ErrInvalidRelationType
	}

	for _, personID := range []int{fromPersonID, toPersonID} {
		exists, err := s.repo.PersonExists(ctx, personID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrPersonNotFound
		}
	}

	rel := Relationship{
		FromPersonID:    fromPersonID,
		ToPersonID:      toPersonID,
		Type:            relType,
		CreatedByUserID: &actorUserID,
	}
	if err := s.repo.CreateRelationship(ctx, &rel); err != nil {
		return nil, err
	}

	return &rel, nil
}

func (s *Service) DeleteRelationship(ctx context.Context, id int) error {
	deleted, err := s.repo.DeleteRelationship(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrRelationshipNotFound
	}
	return nil
}

func (s *Service) CreateMedia(ctx context.Context, actorUserID, personID int, mediaType, url string, caption *string) (*Media, error) {
	if !ValidMediaType(mediaType) {
		return nil, ErrInvalidMediaType
	}
	if strings.TrimSpace(url) == "" {
		return nil, ErrMediaURLRequired
	}

	exists, err := s.repo.PersonExists(ctx, personID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrPersonNotFound
	}

	item := Media{
		PersonID:       personID,
		UploaderUserID: &actorUserID,
		Type:           mediaType,
		URL:            url,
		Caption:        caption,
	}
	if err := s.repo.CreateMedia(ctx, &item); err != nil {
		return nil, err
	}

	return &item, nil
}

func (s *Service) DeleteMedia(ctx context.Context, id int) error {
	deleted, err := s.repo.DeleteMedia(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrMediaNotFound
	}
	return nil
}

// MediaUploadURL issues a presigned PUT URL for a media file upload.
// The object key is date-partitioned so buckets stay browsable.
func (s *Service) MediaUploadURL(ctx context.Context, filename, contentType string) (uploadURL, publicURL string, err error) {
	if s.storage == nil {
		return "", "", ErrStorageNotConfigured
	}

	ext := strings.ToLower(path.Ext(filename))
	now := time.Now().UTC()
	objectName := fmt.Sprintf("media/%d/%02d/%s%s", now.Year(), now.Month(), uuid.New().String(), ext)

	return s.storage.PresignUpload(ctx, objectName, contentType)
}

func toStringArray(tags []string) pq.StringArray {
	if tags == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(tags)
}
