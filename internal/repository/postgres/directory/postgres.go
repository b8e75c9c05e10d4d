package directory

import (
	"context"
	"errors"

	directorydomain "family-directory-go/internal/domain/directory"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(directorydomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) GetPerson(ctx context.Context, id int) (*directorydomain.Person, error) {
	var person directorydomain.Person
	if err := r.db.WithContext(ctx).First(&person, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, directorydomain.ErrPersonNotFound
		}
		return nil, err
	}
	return &person, nil
}

func (r *PostgresRepository) PersonExists(ctx context.Context, id int) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&directorydomain.Person{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) ListPeople(ctx context.Context, filter directorydomain.ListPeopleFilter) ([]directorydomain.Person, error) {
	query := r.db.WithContext(ctx).Model(&directorydomain.Person{})

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("full_name ILIKE ? OR maiden_name ILIKE ?", pattern, pattern)
	}
	if filter.Tag != "" {
		query = query.Where("? = ANY(tags)", filter.Tag)
	}
	if filter.Living != nil {
		query = query.Where("is_living = ?", *filter.Living)
	}

	var people []directorydomain.Person
	if err := query.Order("id asc").Find(&people).Error; err != nil {
		return nil, err
	}
	return people, nil
}

func (r *PostgresRepository) CreatePerson(ctx context.Context, person *directorydomain.Person) error {
	return r.db.WithContext(ctx).Create(person).Error
}

func (r *PostgresRepository) UpdatePerson(ctx context.Context, id int, fields map[string]interface{}) error {
	tx := r.db.WithContext(ctx).Model(&directorydomain.Person{}).Where("id = ?", id).Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return directorydomain.ErrPersonNotFound
	}
	return nil
}

func (r *PostgresRepository) DeletePerson(ctx context.Context, id int) error {
	return r.db.WithContext(ctx).Delete(&directorydomain.Person{}, "id = ?", id).Error
}

func (r *PostgresRepository) ListRelationshipsFrom(ctx context.Context, personID int) ([]directorydomain.Relationship, error) {
	var rels []directorydomain.Relationship
	if err := r.db.WithContext(ctx).Where("from_person_id = ?", personID).Order("id asc").Find(&rels).Error; err != nil {
		return nil, err
	}
	return rels, nil
}

func (r *PostgresRepository) ListRelationshipsTo(ctx context.Context, personID int) ([]directorydomain.Relationship, error) {
	var rels []directorydomain.Relationship
	if err := r.db.WithContext(ctx).Where("to_person_id = ?", personID).Order("id asc").Find(&rels).Error; err != nil {
		return nil, err
	}
	return rels, nil
}

func (r *PostgresRepository) CreateRelationship(ctx context.Context, rel *directorydomain.Relationship) error {
	return r.db.WithContext(ctx).Create(rel).Error
}

func (r *PostgresRepository) DeleteRelationship(ctx context.Context, id int) (bool, error) {
	tx := r.db.WithContext(ctx).Delete(&directorydomain.Relationship{}, "id = ?", id)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *PostgresRepository) DeleteRelationshipsForPerson(ctx context.Context, personID int) error {
	return r.db.WithContext(ctx).
		Where("from_person_id = ? OR to_person_id = ?", personID, personID).
		Delete(&directorydomain.Relationship{}).Error
}

func (r *PostgresRepository) ListMediaForPerson(ctx context.Context, personID int) ([]directorydomain.Media, error) {
	var media []directorydomain.Media
	if err := r.db.WithContext(ctx).Where("person_id = ?", personID).Order("id asc").Find(&media).Error; err != nil {
		return nil, err
	}
	return media, nil
}

func (r *PostgresRepository) CreateMedia(ctx context.Context, media *directorydomain.Media) error {
	return r.db.WithContext(ctx).Create(media).Error
}

func (r *PostgresRepository) DeleteMedia(ctx context.Context, id int) (bool, error) {
	tx := r.db.WithContext(ctx).Delete(&directorydomain.Media{}, "id = ?", id)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *PostgresRepository) DeleteMediaForPerson(ctx context.Context, personID int) error {
	return r.db.WithContext(ctx).Where("person_id = ?", personID).Delete(&directorydomain.Media{}).Error
}
