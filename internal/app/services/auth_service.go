package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yigit/orghub/internal/app/models"
	"github.com/yigit/orghub/internal/app/models/dto"
	"github.com/yigit/orghub/internal/app/repositories"
	"github.com/yigit/orghub/internal/pkg/apperrors"
	"github.com/yigit/orghub/internal/pkg/auth"
)

// tokenTypeBearer is the token type returned by login
const tokenTypeBearer = "Bearer"

// AuthService handles authentication operations
type AuthService struct {
	userRepo   *repositories.UserRepository
	jwtService *auth.JWTService
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo *repositories.UserRepository, jwtService *auth.JWTService, logger zerolog.Logger) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		logger:     logger,
	}
}

// Login checks a username and password and issues an access token
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	username := strings.TrimSpace(req.Username)

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			s.logger.Info().Str("username", username).Msg("Login attempt for unknown user")
			return nil, apperrors.ErrInvalidCredentials
		}
		s.logger.Error().Err(err).Str("username", username).Msg("Failed to look up user")
		return nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.logger.Info().Str("username", username).Msg("Login attempt with wrong password")
		return nil, apperrors.ErrInvalidCredentials
	}

	principal := models.PrincipalFromUser(user)
	token, expiresIn, err := s.jwtService.GenerateAccessToken(principal)
	if err != nil {
		s.logger.Error().Err(err).Str("userID", user.ID).Msg("Failed to generate access token")
		return nil, err
	}

	s.logger.Info().Str("userID", user.ID).Str("viewRole", string(principal.ViewRole())).Msg("User logged in")
	return &dto.TokenResponse{
		AccessToken: token,
		TokenType:   tokenTypeBearer,
		ExpiresIn:   expiresIn,
		User:        ToUserResponse(principal),
	}, nil
}

// ToUserResponse describes the principal
func ToUserResponse(principal models.Principal) dto.UserResponse {
	roles := principal.Roles
	if roles == nil {
		roles = []string{}
	}
	return dto.UserResponse{
		ID:          principal.UserID,
		Name:        principal.Name,
		PrimaryRole: principal.PrimaryRole,
		Roles:       roles,
		ViewRole:    string(principal.ViewRole()),
	}
}
