package commands

import (
	"context"
	"fmt"
	"log/slog"

	apikeyDomain "github.com/pklabs/keygate/internal/apikey/domain"
	apikeyUseCase "github.com/pklabs/keygate/internal/apikey/usecase"
)

// RunListKeys lists stored API keys, newest first. When term is non-empty the
// listing is filtered to keys whose token value or owner login contains it.
func RunListKeys(
	ctx context.Context,
	useCase apikeyUseCase.KeyUseCase,
	logger *slog.Logger,
	term string,
	offset int,
	limit int,
	format string,
	io IOTuple,
) error {
	list, err := listKeys(ctx, useCase, term, offset, limit)
	if err != nil {
		return fmt.Errorf("failed to list api keys: %w", err)
	}

	if format == "json" {
		outputJSON(list, io.Writer)
	} else {
		if len(list) == 0 {
			_, _ = fmt.Fprintln(io.Writer, "No api keys found")
		}
		for _, key := range list {
			status := "active"
			if key.Revoked {
				status = "revoked"
			}
			_, _ = fmt.Fprintf(
				io.Writer,
				"%s  %-20s  %-8s  %s\n",
				key.ID, key.OwnerLogin, status, key.CreatedAt.Format("2006-01-02 15:04:05"),
			)
		}
	}

	logger.Info("api keys listed", slog.Int("count", len(list)))
	return nil
}

func listKeys(
	ctx context.Context,
	useCase apikeyUseCase.KeyUseCase,
	term string,
	offset, limit int,
) ([]*apikeyDomain.APIKey, error) {
	if term != "" {
		return useCase.Search(ctx, term, offset, limit)
	}
	return useCase.List(ctx, offset, limit)
}
