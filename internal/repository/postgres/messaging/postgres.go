package messaging

import (
	"context"
	"errors"

	messagingdomain "family-directory-go/internal/domain/messaging"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(messagingdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) CreateThread(ctx context.Context, thread *messagingdomain.Thread) error {
	return r.db.WithContext(ctx).Create(thread).Error
}

func (r *PostgresRepository) GetThread(ctx context.Context, id int) (*messagingdomain.Thread, error) {
	var thread messagingdomain.Thread
	if err := r.db.WithContext(ctx).First(&thread, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, messagingdomain.ErrThreadNotFound
		}
		return nil, err
	}
	return &thread, nil
}

func (r *PostgresRepository) ListThreadsForUser(ctx context.Context, userID int) ([]messagingdomain.Thread, error) {
	var threads []messagingdomain.Thread
	err := r.db.WithContext(ctx).
		Table("message_threads").
		Select("DISTINCT message_threads.*").
		Joins("join thread_participants on thread_participants.thread_id = message_threads.id").
		Where("thread_participants.user_id = ?", userID).
		Order("message_threads.created_at desc, message_threads.id desc").
		Find(&threads).Error
	if err != nil {
		return nil, err
	}
	return threads, nil
}

func (r *PostgresRepository) AddParticipant(ctx context.Context, participant *messagingdomain.Participant) error {
	return r.db.WithContext(ctx).Create(participant).Error
}

func (r *PostgresRepository) ListParticipants(ctx context.Context, threadID int) ([]messagingdomain.Participant, error) {
	var participants []messagingdomain.Participant
	if err := r.db.WithContext(ctx).Where("thread_id = ?", threadID).Order("id asc").Find(&participants).Error; err != nil {
		return nil, err
	}
	return participants, nil
}

func (r *PostgresRepository) CreateMessage(ctx context.Context, message *messagingdomain.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *PostgresRepository) ListMessages(ctx context.Context, threadID int) ([]messagingdomain.Message, error) {
	var messages []messagingdomain.Message
	if err := r.db.WithContext(ctx).Where("thread_id = ?", threadID).Order("created_at asc, id asc").Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}
