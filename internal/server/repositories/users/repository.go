package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/carmeet/internal/server/models"
	"github.com/google/uuid"
)

// Repository is the part of the user store the activation flow needs.
type Repository interface {
	Find(ctx context.Context, id uuid.UUID) (*models.User, error)
	Activate(ctx context.Context, id uuid.UUID, at time.Time) error
}
