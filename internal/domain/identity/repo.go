package identity

import (
	"context"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, u *UserAccount) error
	GetByID(ctx context.Context, id uuid.UUID) (*UserAccount, error)
	GetByUsername(ctx context.Context, username string) (*UserAccount, error)

	// Memberships
	AddMembership(ctx context.Context, userID uuid.UUID, role Role) error
	Memberships(ctx context.Context, userID uuid.UUID) ([]Role, error)
	ListUsersByRole(ctx context.Context, role Role) ([]*UserAccount, error)
}

type StaffRepository interface {
	Create(ctx context.Context, s *Staff) error
	GetByID(ctx context.Context, id uuid.UUID) (*Staff, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Staff, error)
	List(ctx context.Context, activeOnly bool, limit, offset int) ([]*Staff, int, error)
	Update(ctx context.Context, s *Staff) error
}
