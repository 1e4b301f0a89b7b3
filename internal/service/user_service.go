package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/ecotrack/auth-service/internal/constants"
	"github.com/ecotrack/auth-service/internal/models"
	"github.com/ecotrack/auth-service/internal/repository"
	"github.com/ecotrack/auth-service/internal/utils"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// UserService handles administrative user operations
type UserService struct {
	userRepo repository.UserRepository
	events   EventRecorder
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository, events EventRecorder) *UserService {
	if events == nil {
		events = noopRecorder{}
	}
	return &UserService{
		userRepo: userRepo,
		events:   events,
	}
}

// GetUserByID retrieves a user by ID
func (s *UserService) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Sanitize(), nil
}

// ListUsers returns a page of public user records and the total count
func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]*models.PublicUser, int64, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	users, total, err := s.userRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	public := make([]*models.PublicUser, 0, len(users))
	for _, user := range users {
		public = append(public, user.Public())
	}
	return public, total, nil
}

// DeleteUser removes a user. Administrators cannot delete their own account.
func (s *UserService) DeleteUser(ctx context.Context, actorID, id int64) error {
	if actorID == id {
		return utils.NewBadRequestError("You cannot delete your own account")
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}

	log.Info().Int64("actor_id", actorID).Int64("user_id", id).Msg("User deleted")
	utils.LogAuth(constants.LogEventUserDeleted, id, "", true, "")
	s.events.AuthEvent(constants.LogEventUserDeleted, true)
	return nil
}
