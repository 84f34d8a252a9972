package commands

import (
	"context"
	"fmt"
	"log/slog"

	apikeyUseCase "github.com/pklabs/keygate/internal/apikey/usecase"
)

// RunGenerateKey creates or rotates the API key for the given owner login.
// The token value is shown exactly once; rotating again replaces it.
//
// Requirements: Database must be migrated and accessible, and the account
// must exist.
func RunGenerateKey(
	ctx context.Context,
	useCase apikeyUseCase.KeyUseCase,
	logger *slog.Logger,
	ownerLogin string,
	format string,
	io IOTuple,
) error {
	logger.Info("generating api key", slog.String("owner_login", ownerLogin))

	key, err := useCase.Generate(ctx, ownerLogin)
	if err != nil {
		return fmt.Errorf("failed to generate api key: %w", err)
	}

	if format == "json" {
		outputJSON(key, io.Writer)
	} else {
		_, _ = fmt.Fprintf(io.Writer, "API key generated\n")
		_, _ = fmt.Fprintf(io.Writer, "  ID:    %s\n", key.ID)
		_, _ = fmt.Fprintf(io.Writer, "  Owner: %s\n", key.OwnerLogin)
		_, _ = fmt.Fprintf(io.Writer, "  Token: %s\n", key.TokenValue)
		_, _ = fmt.Fprintln(io.Writer, "Store the token now: rotating replaces it.")
	}

	logger.Info("api key generated successfully",
		slog.String("key_id", key.ID.String()),
		slog.String("owner_login", ownerLogin),
	)

	return nil
}
