package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/chepyr/task-collab-api/internal/apperr"
	"github.com/chepyr/task-collab-api/internal/db"
	"github.com/chepyr/task-collab-api/internal/models"
)

// Resolver turns a single opaque login credential into exactly one account.
// A credential containing "@" is tried as an email first; on no match it
// falls through to a username lookup, so usernames containing "@" stay
// resolvable without the client declaring which kind of identifier it sent.
type Resolver struct {
	Accounts db.AccountRepositoryInterface
}

func NewResolver(accounts db.AccountRepositoryInterface) *Resolver {
	return &Resolver{Accounts: accounts}
}

func (r *Resolver) Resolve(ctx context.Context, credential string) (*models.Account, error) {
	if strings.Contains(credential, "@") {
		account, err := r.Accounts.GetByEmail(ctx, credential)
		if err == nil {
			return account, nil
		}
		if !errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
	}
	return r.Accounts.GetByUsername(ctx, credential)
}
