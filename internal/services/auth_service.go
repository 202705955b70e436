package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-todo-tracker/internal/models"
	"github.com/adanyl0v/go-todo-tracker/internal/storage"
)

type authServiceImpl struct {
	logger zerolog.Logger
	users  storage.UserStore
	hasher PasswordHasher
	tokens TokenIssuer
}

func NewAuthService(
	logger zerolog.Logger,
	users storage.UserStore,
	hasher PasswordHasher,
	tokens TokenIssuer,
) AuthService {
	return &authServiceImpl{
		logger: logger,
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

func validateCredentials(params CredentialsParams) error {
	if strings.TrimSpace(params.Username) == "" {
		return newValidationError("username", "is required")
	}
	if params.Password == "" {
		return newValidationError("password", "is required")
	}
	return nil
}

func (s *authServiceImpl) Register(ctx context.Context, params CredentialsParams) (*AuthResult, error) {
	err := validateCredentials(params)
	if err != nil {
		return nil, err
	}

	exists, err := s.users.UsernameExists(ctx, params.Username)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("username", params.Username).
			Msg("failed to check username")
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if exists {
		s.logger.Info().
			Str("username", params.Username).
			Msg("username already taken")
		return nil, ErrUserAlreadyExists
	}

	passwordHash, err := s.hasher.Hash(params.Password)
	if err != nil {
		if errors.Is(err, ErrPasswordTooLong) {
			return nil, newValidationError("password", "is too long")
		}

		s.logger.Error().
			Err(err).
			Msg("failed to hash password")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		Username:     params.Username,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.users.CreateUser(ctx, user)
	if err != nil {
		// Lost a race with a concurrent registration.
		if errors.Is(err, storage.ErrDuplicate) {
			s.logger.Info().
				Str("username", params.Username).
				Msg("username already taken")
			return nil, ErrUserAlreadyExists
		}

		s.logger.Error().
			Err(err).
			Msg("failed to create user")
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	s.logger.Debug().
		Str("user_id", user.ID).
		Str("username", user.Username).
		Msg("created user")

	result, err := s.issue(user.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Msg("registered user")
	return result, nil
}

func (s *authServiceImpl) Login(ctx context.Context, params CredentialsParams) (*AuthResult, error) {
	err := validateCredentials(params)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByUsername(ctx, params.Username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.hasher.CompareDummy(params.Password)
			s.logger.Info().
				Str("username", params.Username).
				Msg("login for unknown user")
			return nil, ErrInvalidCredentials
		}

		s.logger.Error().
			Err(err).
			Str("username", params.Username).
			Msg("failed to get user by username")
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	match, err := s.hasher.Compare(params.Password, user.PasswordHash)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", user.ID).
			Msg("failed to compare password")
		return nil, fmt.Errorf("failed to compare password: %w", err)
	} else if !match {
		s.logger.Info().
			Str("user_id", user.ID).
			Msg("passwords do not match")
		return nil, ErrInvalidCredentials
	}

	result, err := s.issue(user.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Msg("logged in")
	return result, nil
}

func (s *authServiceImpl) Verify(token string) (string, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (s *authServiceImpl) issue(userID string) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.Sign(userID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to sign token")
		return nil, err
	}
	return &AuthResult{
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}
