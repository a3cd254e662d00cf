package messaging

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, m *Message) error
	GetByID(ctx context.Context, id uuid.UUID) (*Message, error)
	// ListByRecipient returns the recipient's messages, newest first.
	ListByRecipient(ctx context.Context, recipientUserID uuid.UUID) ([]*Message, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	PatientNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}
