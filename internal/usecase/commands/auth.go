package commands

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"techpoints/internal/domain/account"
	"techpoints/internal/domain/ledger"
	reqdto "techpoints/internal/handler/dto/request"
	"techpoints/internal/infra"
	"techpoints/internal/pkg/clock"
	"techpoints/internal/pkg/errs"
	"techpoints/internal/pkg/jwt"
	"techpoints/internal/pkg/password"
	"techpoints/internal/usecase/queries"
	"techpoints/internal/usecase/shared"
)

var (
	ErrInvalidCredentials   = errs.New("invalid credentials")
	ErrAccountInactive      = errs.New("account inactive")
	ErrEmailTaken           = errs.New("email already registered")
	ErrAuthenticationFailed = errs.New("authentication failed")
	ErrTokenGeneration      = errs.New("token generation failed")
	ErrTokenValidation      = errs.New("token validation failed")
)

type RegisterResult struct {
	AccountID     uuid.UUID
	Role          account.Role
	PointsBalance int64
	Degraded      bool
}

type LoginResult struct {
	AccountID uuid.UUID
	Role      account.Role
	TokenPair *TokenPair
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type AuthCommands interface {
	Register(ctx context.Context, req reqdto.RegisterRequest) (*RegisterResult, error)
	Login(ctx context.Context, req reqdto.LoginRequest) (*LoginResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error)
}

type authCommandsImpl struct {
	uow         shared.UnitOfWork
	readStore   queries.AccountReadStore
	jwtService  *jwt.Service
	clock       clock.Clock
	signupBonus int64
}

func NewAuthCommands(
	uow shared.UnitOfWork,
	readStore queries.AccountReadStore,
	jwtService *jwt.Service,
	clock clock.Clock,
	signupBonus int64,
) AuthCommands {
	return &authCommandsImpl{
		uow:         uow,
		readStore:   readStore,
		jwtService:  jwtService,
		clock:       clock,
		signupBonus: signupBonus,
	}
}

func (a *authCommandsImpl) Register(ctx context.Context, req reqdto.RegisterRequest) (*RegisterResult, error) {
	credentials, role, err := req.ToDomain()
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDomainValidation)
	}

	hash, err := password.HashPassword(credentials.Password().Value())
	if err != nil {
		return nil, errs.Wrap(err, "failed to hash password")
	}

	var bonus int64
	if role == account.RoleCustomer && a.signupBonus > 0 {
		bonus = a.signupBonus
	}

	var result *RegisterResult
	err = a.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		result = nil
		now := a.clock.Now()

		_, findErr := tx.Accounts().FindByEmail(ctx, credentials.Email().Value())
		if findErr == nil {
			return ErrEmailTaken
		}
		if !isNotFound(findErr) {
			return findErr
		}

		acc, err := account.NewAccount(credentials.Email(), hash, role, req.DisplayName, bonus, now)
		if err != nil {
			return errs.Mark(err, errs.ErrDomainValidation)
		}
		if err := tx.Accounts().Create(ctx, acc); err != nil {
			if infra.IsKind(err, infra.KindDuplicateKey) {
				return ErrEmailTaken
			}
			return err
		}

		if bonus > 0 {
			entry, err := ledger.NewSignupBonus(acc.ID(), bonus, now)
			if err != nil {
				return errs.Mark(err, errs.ErrDomainValidation)
			}
			if err := tx.Ledger().Append(ctx, entry); err != nil {
				return err
			}
		}

		result = &RegisterResult{
			AccountID:     acc.ID(),
			Role:          acc.Role(),
			PointsBalance: acc.PointsBalance(),
			Degraded:      tx.Degraded(),
		}
		return nil
	})
	if err != nil {
		if errs.Is(err, ErrEmailTaken) || errs.Is(err, errs.ErrDomainValidation) {
			return nil, err
		}
		return nil, markUpstream(err)
	}

	return result, nil
}

func (a *authCommandsImpl) Login(ctx context.Context, req reqdto.LoginRequest) (*LoginResult, error) {
	credentials, err := req.ToDomain()
	if err != nil {
		return nil, errs.Mark(err, ErrAuthenticationFailed)
	}

	acc, err := a.validateAccount(ctx, credentials)
	if err != nil {
		return nil, err
	}

	accessToken, err := a.jwtService.GenerateAccessToken(acc.ID(), acc.Role())
	if err != nil {
		return nil, errs.Mark(err, ErrTokenGeneration)
	}

	refreshToken, err := a.jwtService.GenerateRefreshToken(acc.ID(), acc.Role())
	if err != nil {
		return nil, errs.Mark(err, ErrTokenGeneration)
	}

	err = a.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Accounts().UpdateLastLogin(ctx, acc.ID(), a.clock.Now())
	})
	if err != nil {
		// Login already succeeded; last_login is informational.
		slog.Warn("failed to update last login", "account_id", acc.ID(), "error", err.Error())
	}

	return &LoginResult{
		AccountID: acc.ID(),
		Role:      acc.Role(),
		TokenPair: &TokenPair{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
		},
	}, nil
}

func (a *authCommandsImpl) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := a.jwtService.ValidateToken(refreshToken)
	if err != nil {
		return nil, errs.Mark(err, ErrTokenValidation)
	}

	if claims.TokenType != jwt.TokenTypeRefresh {
		return nil, ErrTokenValidation
	}

	role, err := account.NewRole(claims.Role)
	if err != nil {
		return nil, errs.Mark(err, ErrTokenValidation)
	}

	// The account may have been deactivated since the token was issued
	view, err := a.readStore.FindByID(ctx, claims.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, errs.ErrAccountNotFound
		}
		return nil, markUpstream(err)
	}

	if !view.IsActive {
		return nil, ErrAccountInactive
	}

	accessToken, err := a.jwtService.GenerateAccessToken(claims.UserID, role)
	if err != nil {
		return nil, errs.Mark(err, ErrTokenGeneration)
	}

	newRefreshToken, err := a.jwtService.GenerateRefreshToken(claims.UserID, role)
	if err != nil {
		return nil, errs.Mark(err, ErrTokenGeneration)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
	}, nil
}

func (a *authCommandsImpl) validateAccount(ctx context.Context, credentials account.Credentials) (*account.Account, error) {
	var acc *account.Account
	err := a.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		found, err := tx.Accounts().FindByEmail(ctx, credentials.Email().Value())
		acc = found
		return err
	})
	if err != nil {
		if isNotFound(err) {
			// Same error as a password mismatch so emails cannot be enumerated
			return nil, ErrInvalidCredentials
		}
		return nil, markUpstream(err)
	}

	if !acc.IsActive() {
		return nil, ErrAccountInactive
	}

	if err := password.ComparePassword(acc.PasswordHash(), credentials.Password().Value()); err != nil {
		return nil, ErrInvalidCredentials
	}

	return acc, nil
}
