package services

import (
	"context"
	"fmt"

	"contest-ledger/host"
	"contest-ledger/models"
)

// requireActor authorizes addr as the account acting in an entry point. The
// contract account holds every escrowed prize and never acts for itself.
func requireActor(ctx context.Context, env host.Env, addr models.Address) error {
	if addr == env.Contract {
		return fmt.Errorf("%w: contract account %s cannot act as a caller", host.ErrUnauthorized, addr)
	}
	return env.Auth.RequireAuth(ctx, addr)
}
