package messaging

import (
	"context"
	"fmt"
	"strings"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateThread opens a conversation between the sender and the given
// recipients, optionally posting an opening message. Participant lists
// are not deduplicated and an existing thread between the same users
// does not prevent a new one; both behaviors are intentional.
func (s *Service) CreateThread(ctx context.Context, senderUserID int, recipientUserIDs []int, body string) (*ThreadWithParticipants, error) {
	if len(recipientUserIDs) == 0 {
		return nil, fmt.Errorf("at least one recipient is required")
	}

	participants := append([]int{senderUserID}, recipientUserIDs...)
	body = strings.TrimSpace(body)

	var result ThreadWithParticipants
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		thread := Thread{}
		if err := tx.CreateThread(ctx, &thread); err != nil {
			return err
		}

		for _, userID := range participants {
			participant := Participant{ThreadID: thread.ID, UserID: userID}
			if err := tx.AddParticipant(ctx, &participant); err != nil {
				return err
			}
		}

		if body != "" {
			message := Message{
				ThreadID:     thread.ID,
				SenderUserID: senderUserID,
				Body:         body,
			}
			if err := tx.CreateMessage(ctx, &message); err != nil {
				return err
			}
		}

		result = ThreadWithParticipants{Thread: thread, Participants: participants}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// PostMessage appends a message to an existing thread. The sender is
// not required to be a participant; clients depend on the permissive
// behavior.
func (s *Service) PostMessage(ctx context.Context, threadID, senderUserID int, body string) (*Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("body is required")
	}

	if _, err := s.repo.GetThread(ctx, threadID); err != nil {
		return nil, err
	}

	message := Message{
		ThreadID:     threadID,
		SenderUserID: senderUserID,
		Body:         body,
	}
	if err := s.repo.CreateMessage(ctx, &message); err != nil {
		return nil, err
	}

	return &message, nil
}

// ListThreadsForUser returns the user's inbox, newest thread first,
// each with its participant user ids.
func (s *Service) ListThreadsForUser(ctx context.Context, userID int) ([]ThreadWithParticipants, error) {
	threads, err := s.repo.ListThreadsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]ThreadWithParticipants, 0, len(threads))
	for _, thread := range threads {
		participants, err := s.repo.ListParticipants(ctx, thread.ID)
		if err != nil {
			return nil, err
		}
		ids := make([]int, 0, len(participants))
		for _, participant := range participants {
			ids = append(ids, participant.UserID)
		}
		result = append(result, ThreadWithParticipants{Thread: thread, Participants: ids})
	}

	return result, nil
}

// ListMessages returns a thread's messages in ascending creation order.
func (s *Service) ListMessages(ctx context.Context, threadID int) ([]Message, error) {
	if _, err := s.repo.GetThread(ctx, threadID); err != nil {
		return nil, err
	}
	return s.repo.ListMessages(ctx, threadID)
}
