package inmemory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	directorydomain "family-directory-go/internal/domain/directory"
	"github.com/lib/pq"
)

type DirectoryRepository struct {
	mu            sync.Mutex
	txMu          sync.Mutex
	people        map[int]directorydomain.Person
	relationships map[int]directorydomain.Relationship
	media         map[int]directorydomain.Media
	nextID        int
}

func NewDirectoryRepository() *DirectoryRepository {
	return &DirectoryRepository{
		people:        make(map[int]directorydomain.Person),
		relationships: make(map[int]directorydomain.Relationship),
		media:         make(map[int]directorydomain.Media),
		nextID:        1,
	}
}

func (r *DirectoryRepository) allocID() int {
	id := r.nextID
	r.nextID++
	return id
}

// Transaction serializes on txMu so a rollback cannot discard a
// concurrent transaction's committed writes.
func (r *DirectoryRepository) Transaction(ctx context.Context, fn func(directorydomain.Repository) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	r.mu.Lock()
	snapshot := directorySnapshot{
		people:        copyMap(r.people),
		relationships: copyMap(r.relationships),
		media:         copyMap(r.media),
		nextID:        r.nextID,
	}
	r.mu.Unlock()

	if err := fn(r); err != nil {
		r.mu.Lock()
		r.people = snapshot.people
		r.relationships = snapshot.relationships
		r.media = snapshot.media
		r.nextID = snapshot.nextID
		r.mu.Unlock()
		return err
	}
	return nil
}

type directorySnapshot struct {
	people        map[int]directorydomain.Person
	relationships map[int]directorydomain.Relationship
	media         map[int]directorydomain.Media
	nextID        int
}

func (r *DirectoryRepository) GetPerson(ctx context.Context, id int) (*directorydomain.Person, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	person, ok := r.people[id]
	if !ok {
		return nil, directorydomain.ErrPersonNotFound
	}
	return &person, nil
}

func (r *DirectoryRepository) PersonExists(ctx context.Context, id int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.people[id]
	return ok, nil
}

func (r *DirectoryRepository) ListPeople(ctx context.Context, filter directorydomain.ListPeopleFilter) ([]directorydomain.Person, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	people := make([]directorydomain.Person, 0, len(r.people))
	for _, person := range r.people {
		if !matchesFilter(person, filter) {
			continue
		}
		people = append(people, person)
	}
	sort.Slice(people, func(i, j int) bool { return people[i].ID < people[j].ID })
	return people, nil
}

func matchesFilter(person directorydomain.Person, filter directorydomain.ListPeopleFilter) bool {
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		fullName := strings.ToLower(person.FullName)
		maiden := ""
		if person.MaidenName != nil {
			maiden = strings.ToLower(*person.MaidenName)
		}
		if !strings.Contains(fullName, needle) && !strings.Contains(maiden, needle) {
			return false
		}
	}
	if filter.Tag != "" {
		found := false
		for _, tag := range person.Tags {
			if tag == filter.Tag {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.Living != nil && person.IsLiving != *filter.Living {
		return false
	}
	return true
}

func (r *DirectoryRepository) CreatePerson(ctx context.Context, person *directorydomain.Person) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	person.ID = r.allocID()
	now := time.Now().UTC()
	if person.CreatedAt.IsZero() {
		person.CreatedAt = now
	}
	if person.UpdatedAt.IsZero() {
		person.UpdatedAt = now
	}
	r.people[person.ID] = *person
	return nil
}

func (r *DirectoryRepository) UpdatePerson(ctx context.Context, id int, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	person, ok := r.people[id]
	if !ok {
		return directorydomain.ErrPersonNotFound
	}

	for column, value := range fields {
		switch column {
		case "full_name":
			person.FullName = value.(string)
		case "nickname":
			person.Nickname = strPtr(value)
		case "maiden_name":
			person.MaidenName = strPtr(value)
		case "gender":
			person.Gender = strPtr(value)
		case "is_living":
			person.IsLiving = value.(bool)
		case "birth_date":
			t := value.(time.Time)
			person.BirthDate = &t
		case "death_date":
			t := value.(time.Time)
			person.DeathDate = &t
		case "birth_place":
			person.BirthPlace = strPtr(value)
		case "current_city":
			person.CurrentCity = strPtr(value)
		case "biography":
			person.Biography = strPtr(value)
		case "cultural_notes":
			person.CulturalNotes = strPtr(value)
		case "tags":
			person.Tags = value.(pq.StringArray)
		case "linked_user_id":
			userID := value.(int)
			person.LinkedUserID = &userID
		case "updated_at":
			person.UpdatedAt = value.(time.Time)
		}
	}

	r.people[id] = person
	return nil
}

func (r *DirectoryRepository) DeletePerson(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.people, id)
	return nil
}

func (r *DirectoryRepository) ListRelationshipsFrom(ctx context.Context, personID int) ([]directorydomain.Relationship, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var rels []directorydomain.Relationship
	for _, rel := range r.relationships {
		if rel.FromPersonID == personID {
			rels = append(rels, rel)
		}
	}
	sort.Slice(rels, func(i, j int) bool { return rels[i].ID < rels[j].ID })
	return rels, nil
}

func (r *DirectoryRepository) ListRelationshipsTo(ctx context.Context, personID int) ([]directorydomain.Relationship, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var rels []directorydomain.Relationship
	for _, rel := range r.relationships {
		if rel.ToPersonID == personID {
			rels = append(rels, rel)
		}
	}
	sort.Slice(rels, func(i, j int) bool { return rels[i].ID < rels[j].ID })
	return rels, nil
}

func (r *DirectoryRepository) CreateRelationship(ctx context.Context, rel *directorydomain.Relationship) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rel.ID = r.allocID()
	if rel.CreatedAt.IsZero() {
		rel.CreatedAt = time.Now().UTC()
	}
	r.relationships[rel.ID] = *rel
	return nil
}

func (r *DirectoryRepository) DeleteRelationship(ctx context.Context, id int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.relationships[id]; !ok {
		return false, nil
	}
	delete(r.relationships, id)
	return true, nil
}

func (r *DirectoryRepository) DeleteRelationshipsForPerson(ctx context.Context, personID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, rel := range r.relationships {
		if rel.FromPersonID == personID || rel.ToPersonID == personID {
			delete(r.relationships, id)
		}
	}
	return nil
}

func (r *DirectoryRepository) ListMediaForPerson(ctx context.Context, personID int) ([]directorydomain.Media, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []directorydomain.Media
	for _, item := range r.media {
		if item.PersonID == personID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (r *DirectoryRepository) CreateMedia(ctx context.Context, media *directorydomain.Media) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	media.ID = r.allocID()
	if media.CreatedAt.IsZero() {
		media.CreatedAt = time.Now().UTC()
	}
	r.media[media.ID] = *media
	return nil
}

func (r *DirectoryRepository) DeleteMedia(ctx context.Context, id int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.media[id]; !ok {
		return false, nil
	}
	delete(r.media, id)
	return true, nil
}

func (r *DirectoryRepository) DeleteMediaForPerson(ctx context.Context, personID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, item := range r.media {
		if item.PersonID == personID {
			delete(r.media, id)
		}
	}
	return nil
}
