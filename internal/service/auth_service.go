package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/chibuike2003/palgunn/internal/dto"
	"github.com/chibuike2003/palgunn/internal/model"
	"github.com/chibuike2003/palgunn/internal/repository"
	"github.com/chibuike2003/palgunn/pkg/jwt"
)

var (
	ErrInvalidCredentials  = errors.New("email, registration number or password is incorrect")
	ErrAccountDisabled     = errors.New("account is disabled")
	ErrInvalidRefreshToken = errors.New("refresh token is invalid or expired")
	ErrAccountNotFound     = errors.New("account not found")
)

// TokenBlacklist revoked token ids. Implemented by the Redis client.
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// AuthService login and token lifecycle.
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Refresh(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	// Logout revokes an access token until it expires.
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
	Me(ctx context.Context, accountID string) (*dto.AccountResponse, error)
}

type authService struct {
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist // nil without Redis
	logger    *zap.Logger
}

// NewAuthService creates an AuthService. blacklist may be nil.
func NewAuthService(repo *repository.Repository, jwtMgr *jwt.Manager, blacklist TokenBlacklist, logger *zap.Logger) AuthService {
	return &authService{
		repo:      repo,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger,
	}
}

// ────────────────────── Login ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	identifier := strings.TrimSpace(req.Identifier)

	// 1. look the account up by email or reg number
	var (
		account *model.Account
		err     error
	)
	if strings.Contains(identifier, "@") {
		account, err = s.repo.Account.GetByEmail(ctx, identifier)
	} else {
		account, err = s.repo.Account.GetByRegNumber(ctx, identifier)
	}
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("get account", zap.Error(err))
		return nil, err
	}

	// 2. verify the password
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !account.IsActive {
		return nil, ErrAccountDisabled
	}

	// 3. issue the token pair
	return s.issue(account)
}

// ────────────────────── Refresh ──────────────────────

func (s *authService) Refresh(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(req.RefreshToken)
	if err != nil || claims.TokenType != jwt.TypeRefresh {
		return nil, ErrInvalidRefreshToken
	}

	if s.blacklist != nil {
		revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			s.logger.Warn("check token blacklist", zap.Error(err))
		} else if revoked {
			return nil, ErrInvalidRefreshToken
		}
	}

	account, err := s.repo.Account.GetByID(ctx, claims.UserID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidRefreshToken
		}
		s.logger.Error("get account", zap.String("account_id", claims.UserID), zap.Error(err))
		return nil, err
	}
	if !account.IsActive {
		return nil, ErrAccountDisabled
	}

	// rotate: the presented refresh token cannot be used again
	if s.blacklist != nil {
		if err := s.blacklist.BlacklistToken(ctx, claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
			s.logger.Warn("revoke refresh token", zap.Error(err))
		}
	}

	return s.issue(account)
}

// ────────────────────── Logout ──────────────────────

func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.blacklist == nil || jti == "" {
		return nil
	}
	if err := s.blacklist.BlacklistToken(ctx, jti, time.Until(expiresAt)); err != nil {
		s.logger.Error("revoke access token", zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Me ──────────────────────

func (s *authService) Me(ctx context.Context, accountID string) (*dto.AccountResponse, error) {
	account, err := s.repo.Account.GetByID(ctx, accountID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrAccountNotFound
		}
		s.logger.Error("get account", zap.String("account_id", accountID), zap.Error(err))
		return nil, err
	}
	resp := toAccountResponse(account)
	return &resp, nil
}

// ── helpers ──

func (s *authService) issue(account *model.Account) (*dto.TokenResponse, error) {
	regNumber := ""
	if account.RegNumber != nil {
		regNumber = *account.RegNumber
	}

	accessToken, err := s.jwtMgr.GenerateAccessToken(account.AccountID, account.Role, regNumber)
	if err != nil {
		s.logger.Error("generate access token", zap.Error(err))
		return nil, err
	}
	refreshToken, err := s.jwtMgr.GenerateRefreshToken(account.AccountID, account.Role, regNumber)
	if err != nil {
		s.logger.Error("generate refresh token", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.jwtMgr.AccessTokenTTL().Seconds()),
		Account:      toAccountResponse(account),
	}, nil
}

func toAccountResponse(a *model.Account) dto.AccountResponse {
	resp := dto.AccountResponse{
		ID:    a.AccountID,
		Name:  a.Name,
		Email: a.Email,
		Role:  a.Role,
	}
	if a.RegNumber != nil {
		resp.RegNumber = *a.RegNumber
	}
	return resp
}
