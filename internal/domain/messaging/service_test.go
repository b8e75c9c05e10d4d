package messaging

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"
)

type fakeMessagingRepo struct {
	threads      map[int]*Thread
	participants map[int]*Participant
	messages     map[int]*Message
	nextID       int
	clock        time.Time

	failCreateMessage bool
}

func newFakeMessagingRepo() *fakeMessagingRepo {
	return &fakeMessagingRepo{
		threads:      make(map[int]*Thread),
		participants: make(map[int]*Participant),
		messages:     make(map[int]*Message),
		clock:        time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (r *fakeMessagingRepo) allocID() int {
	r.nextID++
	return r.nextID
}

// tick yields a strictly increasing timestamp so ordering is stable.
func (r *fakeMessagingRepo) tick() time.Time {
	r.clock = r.clock.Add(time.Second)
	return r.clock
}

func (r *fakeMessagingRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	threads := make(map[int]*Thread, len(r.threads))
	for id, thread := range r.threads {
		copied := *thread
		threads[id] = &copied
	}
	participants := make(map[int]*Participant, len(r.participants))
	for id, participant := range r.participants {
		copied := *participant
		participants[id] = &copied
	}
	messages := make(map[int]*Message, len(r.messages))
	for id, message := range r.messages {
		copied := *message
		messages[id] = &copied
	}
	nextID := r.nextID

	if err := fn(r); err != nil {
		r.threads = threads
		r.participants = participants
		r.messages = messages
		r.nextID = nextID
		return err
	}
	return nil
}

func (r *fakeMessagingRepo) CreateThread(ctx context.Context, thread *Thread) error {
	thread.ID = r.allocID()
	thread.CreatedAt = r.tick()
	copied := *thread
	r.threads[thread.ID] = &copied
	return nil
}

func (r *fakeMessagingRepo) GetThread(ctx context.Context, id int) (*Thread, error) {
	thread, ok := r.threads[id]
	if !ok {
		return nil, ErrThreadNotFound
	}
	copied := *thread
	return &copied, nil
}

func (r *fakeMessagingRepo) ListThreadsForUser(ctx context.Context, userID int) ([]Thread, error) {
	seen := make(map[int]bool)
	result := make([]Thread, 0)
	for _, participant := range r.participants {
		if participant.UserID != userID || seen[participant.ThreadID] {
			continue
		}
		seen[participant.ThreadID] = true
		if thread, ok := r.threads[participant.ThreadID]; ok {
			result = append(result, *thread)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *fakeMessagingRepo) AddParticipant(ctx context.Context, participant *Participant) error {
	participant.ID = r.allocID()
	copied := *participant
	r.participants[participant.ID] = &copied
	return nil
}

func (r *fakeMessagingRepo) ListParticipants(ctx context.Context, threadID int) ([]Participant, error) {
	result := make([]Participant, 0)
	for _, participant := range r.participants {
		if participant.ThreadID == threadID {
			result = append(result, *participant)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *fakeMessagingRepo) CreateMessage(ctx context.Context, message *Message) error {
	if r.failCreateMessage {
		return errors.New("create message failed")
	}
	message.ID = r.allocID()
	message.CreatedAt = r.tick()
	copied := *message
	r.messages[message.ID] = &copied
	return nil
}

func (r *fakeMessagingRepo) ListMessages(ctx context.Context, threadID int) ([]Message, error) {
	result := make([]Message, 0)
	for _, message := range r.messages {
		if message.ThreadID == threadID {
			result = append(result, *message)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func TestCreateThreadWithFirstMessage(t *testing.T) {
	repo := newFakeMessagingRepo()
	svc := NewService(repo)

	thread, err := svc.CreateThread(context.Background(), 1, []int{2}, "  hello  ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(thread.Participants) != 2 || thread.Participants[0] != 1 || thread.Participants[1] != 2 {
		t.Fatalf("expected sender first then recipient, got %v", thread.Participants)
	}

	messages, err := svc.ListMessages(context.Background(), thread.Thread.ID)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("expected one opening message, got %d", len(messages))
	}
	if messages[0].Body != "hello" {
		t.Fatalf("expected trimmed body, got %q", messages[0].Body)
	}
	if messages[0].SenderUserID != 1 {
		t.Fatalf("expected sender 1, got %d", messages[0].SenderUserID)
	}
}

func TestCreateThreadWithoutBody(t *testing.T) {
	repo := newFakeMessagingRepo()
	svc := NewService(repo)

	thread, err := svc.CreateThread(context.Background(), 1, []int{2}, "   ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	messages, _ := svc.ListMessages(context.Background(), thread.Thread.ID)
	if len(messages) != 0 {
		t.Fatalf("expected no opening message, got %d", len(messages))
	}
}

func TestCreateThreadRequiresRecipients(t *testing.T) {
	repo := newFakeMessagingRepo()
	svc := NewService(repo)

	if _, err := svc.CreateThread(context.Background(), 1, nil, "hello"); err == nil {
		t.Fatalf("expected error for no recipients")
	}
}

func TestCreateThreadSamePairMakesNewThread(t *testing.T) {
	repo := newFakeMessagingRepo()
	svc := NewService(repo)

	first, err := svc.CreateThread(context.Background(), 1, []int{2}, "hello")
	if err != nil {
		t.Fatalf("first thread: %v", err)
	}
	second, err := svc.CreateThread(context.Background(), 1, []int{2}, "hello again")
	if err != nil {
		t.Fatalf("second thread: %v", err)
	}
	if first.Thread.ID == second.Thread.ID {
		t.Fatalf("expected distinct threads for repeated pair")
	}
}

func TestCreateThreadRollsBackOnMessageFailure(t *testing.T) {
	repo := newFakeMessagingRepo()
	repo.failCreateMessage = true
	svc := NewService(repo)

	if _, err := svc.CreateThread(context.Background(), 1, []int{2}, "hello"); err == nil {
		t.Fatalf("expected error")
	}
	if len(repo.threads) != 0 || len(repo.participants) != 0 {
		t.Fatalf("expected thread and participants rolled back")
	}
}

func TestPostMessageValidation(t *testing.T) {
	repo := newFakeMessagingRepo()
	svc := NewService(repo)

	thread, err := svc.CreateThread(context.Background(), 1, []int{2}, "")
	if err != nil {
		t.Fatalf("create thread: %v", err)
	}

	if _, err := svc.PostMessage(context.Background(), thread.Thread.ID, 1, "   "); err == nil {
		t.Fatalf("expected error for blank body")
	}
	if _, err := svc.PostMessage(context.Background(), 404, 1, "hello"); !errors.Is(err, ErrThreadNotFound) {
		t.Fatalf("expected ErrThreadNotFound, got %v", err)
	}

	message, err := svc.PostMessage(context.Background(), thread.Thread.ID, 2, " reply ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if message.Body != "reply" {
		t.Fatalf("expected trimmed body, got %q", message.Body)
	}
}

func TestPostMessageAllowsNonParticipant(t *testing.T) {
	repo := newFakeMessagingRepo()
	svc := NewService(repo)

	thread, err := svc.CreateThread(context.Background(), 1, []int{2}, "")
	if err != nil {
		t.Fatalf("create thread: %v", err)
	}
	if _, err := svc.PostMessage(context.Background(), thread.Thread.ID, 99, "barging in"); err != nil {
		t.Fatalf("expected non-participant post to succeed, got %v", err)
	}
}

func TestListMessagesAscending(t *testing.T) {
	repo := newFakeMessagingRepo()
	svc := NewService(repo)

	thread, err := svc.CreateThread(context.Background(), 1, []int{2}, "first")
	if err != nil {
		t.Fatalf("create thread: %v", err)
	}
	if _, err := svc.PostMessage(context.Background(), thread.Thread.ID, 2, "second"); err != nil {
		t.Fatalf("post: %v", err)
	}
	if _, err := svc.PostMessage(context.Background(), thread.Thread.ID, 1, "third"); err != nil {
		t.Fatalf("post: %v", err)
	}

	messages, err := svc.ListMessages(context.Background(), thread.Thread.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := []string{"first", "second", "third"}
	if len(messages) != len(want) {
		t.Fatalf("expected %d messages, got %d", len(want), len(messages))
	}
	for i, body := range want {
		if messages[i].Body != body {
			t.Fatalf("expected %q at index %d, got %q", body, i, messages[i].Body)
		}
	}
}

func TestListMessagesThreadNotFound(t *testing.T) {
	repo := newFakeMessagingRepo()
	svc := NewService(repo)

	if _, err := svc.ListMessages(context.Background(), 404); !errors.Is(err, ErrThreadNotFound) {
		t.Fatalf("expected ErrThreadNotFound, got %v", err)
	}
}

func TestListThreadsForUserNewestFirst(t *testing.T) {
	repo := newFakeMessagingRepo()
	svc := NewService(repo)

	first, err := svc.CreateThread(context.Background(), 1, []int{2}, "old")
	if err != nil {
		t.Fatalf("create thread: %v", err)
	}
	second, err := svc.CreateThread(context.Background(), 3, []int{1}, "new")
	if err != nil {
		t.Fatalf("create thread: %v", err)
	}
	if _, err := svc.CreateThread(context.Background(), 2, []int{3}, "not mine"); err != nil {
		t.Fatalf("create thread: %v", err)
	}

	inbox, err := svc.ListThreadsForUser(context.Background(), 1)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(inbox) != 2 {
		t.Fatalf("expected two threads, got %d", len(inbox))
	}
	if inbox[0].Thread.ID != second.Thread.ID || inbox[1].Thread.ID != first.Thread.ID {
		t.Fatalf("expected newest first, got %d then %d", inbox[0].Thread.ID, inbox[1].Thread.ID)
	}
	if len(inbox[0].Participants) != 2 {
		t.Fatalf("expected participant ids resolved, got %v", inbox[0].Participants)
	}
}
