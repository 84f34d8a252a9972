package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	apikeyUseCase "github.com/pklabs/keygate/internal/apikey/usecase"
)

// RunRevokeKey revokes the API key with the given id. The key row survives;
// the token simply stops authenticating until restored.
func RunRevokeKey(
	ctx context.Context,
	useCase apikeyUseCase.KeyUseCase,
	logger *slog.Logger,
	idStr string,
	io IOTuple,
) error {
	id, err := uuid.Parse(idStr)
	if err != nil {
		return fmt.Errorf("invalid key id: %w", err)
	}

	if err := useCase.Revoke(ctx, id); err != nil {
		return fmt.Errorf("failed to revoke api key: %w", err)
	}

	_, _ = fmt.Fprintf(io.Writer, "API key %s revoked\n", id)

	logger.Info("api key revoked", slog.String("key_id", id.String()))
	return nil
}

// RunRestoreKey clears the revoked flag of the API key with the given id,
// making the existing token value authenticate again.
func RunRestoreKey(
	ctx context.Context,
	useCase apikeyUseCase.KeyUseCase,
	logger *slog.Logger,
	idStr string,
	io IOTuple,
) error {
	id, err := uuid.Parse(idStr)
	if err != nil {
		return fmt.Errorf("invalid key id: %w", err)
	}

	if err := useCase.Restore(ctx, id); err != nil {
		return fmt.Errorf("failed to restore api key: %w", err)
	}

	_, _ = fmt.Fprintf(io.Writer, "API key %s restored\n", id)

	logger.Info("api key restored", slog.String("key_id", id.String()))
	return nil
}

// RunDeleteKey permanently removes the API key with the given id.
func RunDeleteKey(
	ctx context.Context,
	useCase apikeyUseCase.KeyUseCase,
	logger *slog.Logger,
	idStr string,
	io IOTuple,
) error {
	id, err := uuid.Parse(idStr)
	if err != nil {
		return fmt.Errorf("invalid key id: %w", err)
	}

	if err := useCase.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete api key: %w", err)
	}

	_, _ = fmt.Fprintf(io.Writer, "API key %s deleted\n", id)

	logger.Info("api key deleted", slog.String("key_id", id.String()))
	return nil
}
