package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/intake-service/internal/auth"
	"github.com/spec-kit/intake-service/internal/config"
	"github.com/spec-kit/intake-service/internal/domain"
	"github.com/spec-kit/intake-service/internal/repository"
	apperrors "github.com/spec-kit/intake-service/pkg/util/errorutil"
)

// AuthService coordinates registration and login flows.
type AuthService struct {
	actors     repository.ActorRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, actors repository.ActorRepository) *AuthService {
	return &AuthService{
		actors:     actors,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// TokenManager exposes the token manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// Register creates a respondent account. Provider, admin and support
// accounts are provisioned out of band.
func (s *AuthService) Register(ctx context.Context, username, password string) (*domain.Actor, string, time.Time, error) {
	if _, err := s.actors.GetByUsername(ctx, username); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("username already registered", nil)
	} else if err != pgx.ErrNoRows {
		return nil, "", time.Time{}, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	actor := &domain.Actor{
		Identity: domain.Identity{Username: username, PasswordHash: hash},
		Role:     domain.Role{Kind: domain.RoleRespondent},
	}
	if err := s.actors.Create(ctx, actor); err != nil {
		return nil, "", time.Time{}, err
	}

	token, exp, err := s.tokenMgr.GenerateToken(actor)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return actor, token, exp, nil
}

// Login authenticates any actor and returns a role-bearing token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.Actor, string, time.Time, error) {
	actor, err := s.actors.GetByUsername(ctx, username)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, err
	}
	if err := auth.ComparePassword(actor.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(actor)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return actor, token, exp, nil
}
