package messaging

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNotRecipient means the actor tried to touch a message addressed to
// someone else.
var (
	ErrNotRecipient = errors.New("not the message recipient")

	// ErrNotFound reports a message id with no row behind it.
	ErrNotFound = errors.New("message not found")
)

// RecipientResolver picks the doctor a patient's messages go to: the
// assistant on their latest admission.
type RecipientResolver interface {
	MessageRecipient(ctx context.Context, patientID uuid.UUID) (staffID, userID uuid.UUID, err error)
}

// ProfileResolver maps a user account to its patient profile.
type ProfileResolver interface {
	ProfileIDByUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
}

type Service struct {
	repo     Repository
	resolver RecipientResolver
	profiles ProfileResolver
}

func NewService(repo Repository, resolver RecipientResolver, profiles ProfileResolver) *Service {
	return &Service{repo: repo, resolver: resolver, profiles: profiles}
}

type SendRequest struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Send delivers a patient's message to the assistant doctor on their latest
// admission. The sender never picks the recipient; resolution failures pass
// through so callers can distinguish "no assigned doctor".
func (s *Service) Send(ctx context.Context, senderUserID uuid.UUID, req SendRequest) (*Message, error) {
	if req.Subject == "" {
		return nil, fmt.Errorf("subject is required")
	}
	if req.Body == "" {
		return nil, fmt.Errorf("body is required")
	}

	patientID, err := s.profiles.ProfileIDByUser(ctx, senderUserID)
	if err != nil {
		return nil, fmt.Errorf("no patient profile for sender: %w", err)
	}

	_, recipientUserID, err := s.resolver.MessageRecipient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	m := &Message{
		SenderUserID:    senderUserID,
		RecipientUserID: recipientUserID,
		PatientID:       patientID,
		Subject:         req.Subject,
		Body:            req.Body,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Inbox returns the recipient's messages grouped by sender. Groups follow
// the most recent message, and messages stay newest first inside a group.
func (s *Service) Inbox(ctx context.Context, recipientUserID uuid.UUID) ([]*InboxGroup, error) {
	messages, err := s.repo.ListByRecipient(ctx, recipientUserID)
	if err != nil {
		return nil, err
	}

	bySender := make(map[uuid.UUID]*InboxGroup)
	var order []uuid.UUID
	for _, m := range messages {
		g, ok := bySender[m.SenderUserID]
		if !ok {
			g = &InboxGroup{
				SenderUserID:    m.SenderUserID,
				PatientID:       m.PatientID,
				LatestMessageAt: m.CreatedAt,
			}
			bySender[m.SenderUserID] = g
			order = append(order, m.SenderUserID)
		}
		g.Messages = append(g.Messages, m)
		if !m.Read() {
			g.UnreadCount++
		}
	}

	patientIDs := make([]uuid.UUID, 0, len(order))
	for _, senderID := range order {
		patientIDs = append(patientIDs, bySender[senderID].PatientID)
	}
	names, err := s.repo.PatientNames(ctx, patientIDs)
	if err != nil {
		return nil, err
	}

	groups := make([]*InboxGroup, 0, len(order))
	for _, senderID := range order {
		g := bySender[senderID]
		g.PatientName = names[g.PatientID]
		groups = append(groups, g)
	}
	return groups, nil
}

// MarkRead stamps a message read. Only its recipient may do so.
func (s *Service) MarkRead(ctx context.Context, userID, messageID uuid.UUID) error {
	m, err := s.repo.GetByID(ctx, messageID)
	if err != nil {
		return fmt.Errorf("load message: %w", err)
	}
	if m.RecipientUserID != userID {
		return ErrNotRecipient
	}
	return s.repo.MarkRead(ctx, messageID)
}
