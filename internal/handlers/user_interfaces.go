package handlers

import (
	"context"

	"github.com/ecotrack/auth-service/internal/models"
)

// UserServiceInterface defines the administrative user operations used by UserHandler
type UserServiceInterface interface {
	ListUsers(ctx context.Context, limit, offset int) ([]*models.PublicUser, int64, error)
	DeleteUser(ctx context.Context, actorID, id int64) error
}
