package auth

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"

	"github.com/chepyr/task-collab-api/internal/apperr"
	"github.com/chepyr/task-collab-api/internal/db"
)

// Authenticator resolves a credential, checks the password and mints the
// token pair. Unknown credential and wrong password collapse into the same
// generic failure so responses never reveal whether an account exists.
type Authenticator struct {
	Resolver *Resolver
	Hasher   *PasswordHasher
	Tokens   *TokenManager
	Accounts db.AccountRepositoryInterface
}

func NewAuthenticator(accounts db.AccountRepositoryInterface, tokens *TokenManager) *Authenticator {
	return &Authenticator{
		Resolver: NewResolver(accounts),
		Hasher:   NewPasswordHasher(),
		Tokens:   tokens,
		Accounts: accounts,
	}
}

func (a *Authenticator) Login(ctx context.Context, credential, password string) (*TokenPair, error) {
	account, err := a.Resolver.Resolve(ctx, credential)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrInvalidCredentials
		}
		return nil, err
	}

	if !a.Hasher.Verify(password, account.PasswordHash) {
		return nil, apperr.ErrInvalidCredentials
	}

	return a.Tokens.GeneratePair(account)
}

// Refresh mints a new access token from a valid, unexpired refresh token.
func (a *Authenticator) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := a.Tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return "", apperr.ErrUnauthenticated
	}

	accountID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return "", apperr.ErrUnauthenticated
	}

	account, err := a.Accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", apperr.ErrUnauthenticated
		}
		return "", err
	}

	access, err := a.Tokens.GenerateAccessToken(account)
	if err != nil {
		log.Printf("Error generating access token: %v", err)
		return "", err
	}
	return access, nil
}
