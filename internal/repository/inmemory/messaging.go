package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	messagingdomain "family-directory-go/internal/domain/messaging"
)

type MessagingRepository struct {
	mu           sync.Mutex
	txMu         sync.Mutex
	threads      map[int]messagingdomain.Thread
	participants map[int]messagingdomain.Participant
	messages     map[int]messagingdomain.Message
	nextID       int
	clock        int64
}

func NewMessagingRepository() *MessagingRepository {
	return &MessagingRepository{
		threads:      make(map[int]messagingdomain.Thread),
		participants: make(map[int]messagingdomain.Participant),
		messages:     make(map[int]messagingdomain.Message),
		nextID:       1,
	}
}

func (r *MessagingRepository) allocID() int {
	id := r.nextID
	r.nextID++
	return id
}

// tick returns strictly increasing timestamps so ordering tests are
// deterministic even when rows are created within the same nanosecond.
func (r *MessagingRepository) tick() time.Time {
	r.clock++
	return time.Unix(0, r.clock*int64(time.Millisecond)).UTC()
}

// Transaction serializes on txMu so a rollback cannot discard a
// concurrent transaction's committed writes.
func (r *MessagingRepository) Transaction(ctx context.Context, fn func(messagingdomain.Repository) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	r.mu.Lock()
	threads := copyMap(r.threads)
	participants := copyMap(r.participants)
	messages := copyMap(r.messages)
	nextID := r.nextID
	r.mu.Unlock()

	if err := fn(r); err != nil {
		r.mu.Lock()
		r.threads = threads
		r.participants = participants
		r.messages = messages
		r.nextID = nextID
		r.mu.Unlock()
		return err
	}
	return nil
}

func (r *MessagingRepository) CreateThread(ctx context.Context, thread *messagingdomain.Thread) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	thread.ID = r.allocID()
	if thread.CreatedAt.IsZero() {
		thread.CreatedAt = r.tick()
	}
	r.threads[thread.ID] = *thread
	return nil
}

func (r *MessagingRepository) GetThread(ctx context.Context, id int) (*messagingdomain.Thread, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	thread, ok := r.threads[id]
	if !ok {
		return nil, messagingdomain.ErrThreadNotFound
	}
	return &thread, nil
}

func (r *MessagingRepository) ListThreadsForUser(ctx context.Context, userID int) ([]messagingdomain.Thread, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[int]struct{})
	var threads []messagingdomain.Thread
	for _, participant := range r.participants {
		if participant.UserID != userID {
			continue
		}
		if _, ok := seen[participant.ThreadID]; ok {
			continue
		}
		seen[participant.ThreadID] = struct{}{}
		if thread, ok := r.threads[participant.ThreadID]; ok {
			threads = append(threads, thread)
		}
	}

	sort.Slice(threads, func(i, j int) bool {
		if !threads[i].CreatedAt.Equal(threads[j].CreatedAt) {
			return threads[i].CreatedAt.After(threads[j].CreatedAt)
		}
		return threads[i].ID > threads[j].ID
	})
	return threads, nil
}

func (r *MessagingRepository) AddParticipant(ctx context.Context, participant *messagingdomain.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	participant.ID = r.allocID()
	r.participants[participant.ID] = *participant
	return nil
}

func (r *MessagingRepository) ListParticipants(ctx context.Context, threadID int) ([]messagingdomain.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var participants []messagingdomain.Participant
	for _, participant := range r.participants {
		if participant.ThreadID == threadID {
			participants = append(participants, participant)
		}
	}
	sort.Slice(participants, func(i, j int) bool { return participants[i].ID < participants[j].ID })
	return participants, nil
}

func (r *MessagingRepository) CreateMessage(ctx context.Context, message *messagingdomain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	message.ID = r.allocID()
	if message.CreatedAt.IsZero() {
		message.CreatedAt = r.tick()
	}
	r.messages[message.ID] = *message
	return nil
}

func (r *MessagingRepository) ListMessages(ctx context.Context, threadID int) ([]messagingdomain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var messages []messagingdomain.Message
	for _, message := range r.messages {
		if message.ThreadID == threadID {
			messages = append(messages, message)
		}
	}
	sort.Slice(messages, func(i, j int) bool {
		if !messages[i].CreatedAt.Equal(messages[j].CreatedAt) {
			return messages[i].CreatedAt.Before(messages[j].CreatedAt)
		}
		return messages[i].ID < messages[j].ID
	})
	return messages, nil
}
