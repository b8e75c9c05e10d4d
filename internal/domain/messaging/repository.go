package messaging

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error

	CreateThread(ctx context.Context, thread *Thread) error
	GetThread(ctx context.Context, id int) (*Thread, error)
	ListThreadsForUser(ctx context.Context, userID int) ([]Thread, error)

	AddParticipant(ctx context.Context, participant *Participant) error
	ListParticipants(ctx context.Context, threadID int) ([]Participant, error)

	CreateMessage(ctx context.Context, message *Message) error
	ListMessages(ctx context.Context, threadID int) ([]Message, error)
}
