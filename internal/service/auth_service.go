package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ecotrack/auth-service/internal/auth"
	"github.com/ecotrack/auth-service/internal/config"
	"github.com/ecotrack/auth-service/internal/constants"
	"github.com/ecotrack/auth-service/internal/models"
	"github.com/ecotrack/auth-service/internal/repository"
	"github.com/ecotrack/auth-service/internal/utils"
)

// EventRecorder counts authentication events
type EventRecorder interface {
	AuthEvent(event string, success bool)
}

type noopRecorder struct{}

func (noopRecorder) AuthEvent(string, bool) {}

// AuthService handles registration, login, sessions and password recovery
type AuthService struct {
	userRepo repository.UserRepository
	tokens   auth.TokenService
	denylist auth.Denylist
	hasher   *auth.PasswordHasher
	mailer   Mailer
	resetCfg config.PasswordResetSettings
	events   EventRecorder
	now      func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repository.UserRepository,
	tokens auth.TokenService,
	denylist auth.Denylist,
	hasher *auth.PasswordHasher,
	mailer Mailer,
	resetCfg config.PasswordResetSettings,
	events EventRecorder,
) *AuthService {
	if events == nil {
		events = noopRecorder{}
	}
	if resetCfg.TokenTTL <= 0 {
		resetCfg.TokenTTL = constants.DefaultResetTokenTTL
	}
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		denylist: denylist,
		hasher:   hasher,
		mailer:   mailer,
		resetCfg: resetCfg,
		events:   events,
		now:      time.Now,
	}
}

// Register creates a new account and signs it in
func (s *AuthService) Register(ctx context.Context, reg *models.UserRegistration) (*models.AuthResult, error) {
	reg.Email = utils.NormalizeEmail(reg.Email)
	if err := utils.ValidateStruct(reg); err != nil {
		return nil, err
	}

	user := models.NewUser(strings.TrimSpace(reg.Name), reg.Email)

	passwordHash, err := s.hasher.Hash(reg.Password)
	if err != nil {
		return nil, utils.NewInternalServerError(err)
	}
	user.PasswordHash = passwordHash

	// The unique index on email is the only duplicate check
	if err := s.userRepo.Create(ctx, user); err != nil {
		s.record(constants.LogEventRegister, user.ID, user.Email, false, "create failed")
		return nil, err
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	s.record(constants.LogEventRegister, user.ID, user.Email, true, "")
	return result, nil
}

// Login verifies credentials and issues a session token.
// An unknown email and a wrong password produce the same error after the same amount of work.
func (s *AuthService) Login(ctx context.Context, creds *models.UserCredentials) (*models.AuthResult, error) {
	creds.Email = utils.NormalizeEmail(creds.Email)
	if err := utils.ValidateStruct(creds); err != nil {
		return nil, err
	}
	email := creds.Email

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if utils.IsNotFoundError(err) {
			s.hasher.VerifyDummy(creds.Password)
			s.record(constants.LogEventLogin, 0, email, false, "unknown email")
			return nil, utils.NewInvalidCredentialsError()
		}
		return nil, err
	}

	valid, err := s.hasher.Verify(creds.Password, user.PasswordHash)
	if err != nil {
		return nil, utils.NewInternalServerError(err)
	}
	if !valid {
		s.record(constants.LogEventLogin, user.ID, email, false, "wrong password")
		return nil, utils.NewInvalidCredentialsError()
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	s.record(constants.LogEventLogin, user.ID, email, true, "")
	return result, nil
}

// Logout revokes the presented session token until it would have expired
func (s *AuthService) Logout(ctx context.Context, claims *auth.CustomClaims) error {
	if claims == nil {
		return utils.NewUnauthorizedError("")
	}

	if err := s.revoke(ctx, claims); err != nil {
		return err
	}

	s.record(constants.LogEventLogout, claims.UserID, "", true, "")
	return nil
}

// Refresh issues a new session token for the caller and revokes the one that was presented
func (s *AuthService) Refresh(ctx context.Context, user *models.User, claims *auth.CustomClaims) (*models.AuthResult, error) {
	if user == nil || claims == nil {
		return nil, utils.NewUnauthorizedError("")
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	if err := s.revoke(ctx, claims); err != nil {
		return nil, err
	}

	s.record(constants.LogEventRefresh, user.ID, "", true, "")
	return result, nil
}

// ForgotPassword stores a fresh reset token for the account and hands it to the mailer.
//
// Unless unknown emails are explicitly revealed, the caller sees the same outcome
// whether or not the email is registered: an empty issue and no error.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (*models.PasswordResetIssue, error) {
	email = utils.NormalizeEmail(email)
	if err := utils.ValidateStruct(&models.ForgotPasswordRequest{Email: email}); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if utils.IsNotFoundError(err) {
			s.record(constants.LogEventResetRequested, 0, email, false, "unknown email")
			if s.resetCfg.RevealUnknownEmail {
				return nil, utils.NewNotFoundError(constants.MsgNoUserWithEmail)
			}
			return &models.PasswordResetIssue{}, nil
		}
		return nil, err
	}

	token, tokenHash, err := auth.GenerateResetToken()
	if err != nil {
		return nil, utils.NewInternalServerError(err)
	}
	expiresAt := s.now().Add(s.resetCfg.TokenTTL).UTC()

	if err := s.userRepo.SetResetToken(ctx, user.ID, tokenHash, expiresAt); err != nil {
		return nil, err
	}

	sendCtx, cancel := context.WithTimeout(ctx, constants.MailSendTimeout)
	defer cancel()

	err = s.mailer.SendPasswordReset(sendCtx, models.PasswordResetMessage{
		To:        user.Email,
		Name:      user.Name,
		Token:     token,
		ResetURL:  s.resetURL(token),
		ExpiresAt: expiresAt,
	})
	if err != nil {
		if clearErr := s.userRepo.ClearResetToken(ctx, user.ID); clearErr != nil {
			log.Error().Err(clearErr).Int64("user_id", user.ID).Msg("Failed to clear undeliverable reset token")
		}
		s.record(constants.LogEventResetRequested, user.ID, email, false, "mail delivery failed")
		if s.resetCfg.RevealUnknownEmail {
			return nil, utils.NewInternalServerError(fmt.Errorf("email could not be sent: %w", err))
		}
		return &models.PasswordResetIssue{}, nil
	}

	s.record(constants.LogEventResetRequested, user.ID, email, true, "")
	return &models.PasswordResetIssue{
		UserID:    user.ID,
		Email:     user.Email,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// ResetPassword consumes a reset token, sets the new password and signs the user in.
// The token is checked and cleared in a single conditional update.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken, newPassword string) (*models.AuthResult, error) {
	if err := utils.ValidateStruct(&models.ResetPasswordRequest{Password: newPassword}); err != nil {
		return nil, err
	}
	if rawToken == "" {
		return nil, utils.NewInvalidResetTokenError()
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, utils.NewInternalServerError(err)
	}

	user, err := s.userRepo.ConsumeResetToken(ctx, auth.HashResetToken(rawToken), passwordHash, s.now().UTC())
	if err != nil {
		if utils.IsNotFoundError(err) {
			err = utils.NewInvalidResetTokenError()
		}
		s.record(constants.LogEventResetCompleted, 0, "", false, "invalid token")
		return nil, err
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	s.record(constants.LogEventResetCompleted, user.ID, user.Email, true, "")
	return result, nil
}

// ChangePassword replaces the password of an authenticated user after checking the current one
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) (*models.AuthResult, error) {
	req := &models.ChangePasswordRequest{CurrentPassword: currentPassword, NewPassword: newPassword}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if utils.IsNotFoundError(err) {
			return nil, utils.NewUnauthorizedError(constants.MsgAuthRequired)
		}
		return nil, err
	}

	valid, err := s.hasher.Verify(currentPassword, user.PasswordHash)
	if err != nil {
		return nil, utils.NewInternalServerError(err)
	}
	if !valid {
		s.record(constants.LogEventPasswordChange, userID, "", false, "wrong current password")
		return nil, utils.NewIncorrectPasswordError()
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, utils.NewInternalServerError(err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, passwordHash); err != nil {
		return nil, err
	}
	user.PasswordHash = passwordHash

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	s.record(constants.LogEventPasswordChange, userID, "", true, "")
	return result, nil
}

// CleanupExpired clears expired reset tokens and prunes the denylist
func (s *AuthService) CleanupExpired(ctx context.Context) (resetTokens int64, revoked int, err error) {
	resetTokens, err = s.userRepo.ClearExpiredResetTokens(ctx, s.now().UTC())
	if err != nil {
		return 0, 0, fmt.Errorf("failed to clear expired reset tokens: %w", err)
	}

	revoked, err = s.denylist.Prune(ctx)
	if err != nil {
		return resetTokens, 0, fmt.Errorf("failed to prune denylist: %w", err)
	}

	return resetTokens, revoked, nil
}

func (s *AuthService) issue(user *models.User) (*models.AuthResult, error) {
	issued, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, utils.NewInternalServerError(err)
	}

	return &models.AuthResult{
		Token:     issued.Token,
		TokenID:   issued.ID,
		ExpiresAt: issued.ExpiresAt,
		User:      user.Sanitize(),
	}, nil
}

func (s *AuthService) revoke(ctx context.Context, claims *auth.CustomClaims) error {
	until := s.now()
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}

	if err := s.denylist.Revoke(ctx, claims.ID, until); err != nil {
		return utils.NewInternalServerError(fmt.Errorf("failed to revoke token: %w", err))
	}
	return nil
}

func (s *AuthService) resetURL(token string) string {
	if s.resetCfg.URL == "" {
		return ""
	}
	return strings.TrimRight(s.resetCfg.URL, "/") + "/" + token
}

func (s *AuthService) record(event string, userID int64, email string, success bool, reason string) {
	utils.LogAuth(event, userID, email, success, reason)
	s.events.AuthEvent(event, success)
}
