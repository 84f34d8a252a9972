package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	accountDomain "github.com/pklabs/keygate/internal/account/domain"
	accountUseCase "github.com/pklabs/keygate/internal/account/usecase"
)

// RunCreateAccount creates a new account that API keys can be bound to.
// Capabilities are given comma-separated; an empty string grants the default
// read capability. Outputs the created account in text or JSON format.
//
// Requirements: Database must be migrated and accessible.
func RunCreateAccount(
	ctx context.Context,
	useCase accountUseCase.UseCase,
	logger *slog.Logger,
	login string,
	email string,
	displayName string,
	capabilitiesStr string,
	format string,
	io IOTuple,
) error {
	logger.Info("creating new account", slog.String("login", login))

	capabilities, err := parseCapabilities(capabilitiesStr)
	if err != nil {
		return err
	}

	input := &accountUseCase.CreateAccountInput{
		Login:        login,
		Email:        email,
		DisplayName:  displayName,
		Capabilities: capabilities,
	}

	account, err := useCase.Create(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	if format == "json" {
		outputJSON(account, io.Writer)
	} else {
		_, _ = fmt.Fprintf(io.Writer, "Account created\n")
		_, _ = fmt.Fprintf(io.Writer, "  ID:           %s\n", account.ID)
		_, _ = fmt.Fprintf(io.Writer, "  Login:        %s\n", account.Login)
		_, _ = fmt.Fprintf(io.Writer, "  Email:        %s\n", account.Email)
		_, _ = fmt.Fprintf(io.Writer, "  Capabilities: %s\n", strings.Join(account.Capabilities, ", "))
	}

	logger.Info("account created successfully",
		slog.String("account_id", account.ID.String()),
		slog.String("login", login),
	)

	return nil
}

// parseCapabilities converts a comma-separated capability list, validating
// each entry. An empty string yields nil so the use case applies its default.
func parseCapabilities(capabilitiesStr string) ([]string, error) {
	if strings.TrimSpace(capabilitiesStr) == "" {
		return nil, nil
	}

	valid := map[string]struct{}{
		accountDomain.CapabilityRead:       {},
		accountDomain.CapabilityManageKeys: {},
	}

	parts := strings.Split(capabilitiesStr, ",")
	capabilities := make([]string, 0, len(parts))
	for _, part := range parts {
		capability := strings.TrimSpace(part)
		if capability == "" {
			continue
		}
		if _, ok := valid[capability]; !ok {
			return nil, fmt.Errorf(
				"invalid capability: %s (valid options: %s, %s)",
				capability, accountDomain.CapabilityRead, accountDomain.CapabilityManageKeys,
			)
		}
		capabilities = append(capabilities, capability)
	}

	return capabilities, nil
}
