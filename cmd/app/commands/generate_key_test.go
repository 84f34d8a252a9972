package commands

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	apikeyDomain "github.com/pklabs/keygate/internal/apikey/domain"
	"github.com/pklabs/keygate/internal/apikey/usecase/mocks"
)

func TestRunGenerateKey(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	keyID := uuid.Must(uuid.NewV7())

	t.Run("text output shows token once", func(t *testing.T) {
		mockUseCase := &mocks.MockKeyUseCase{}
		key := &apikeyDomain.APIKey{
			ID:         keyID,
			OwnerLogin: "alice",
			OwnerEmail: "alice@example.com",
			TokenValue: "pkl_token",
		}

		mockUseCase.On("Generate", ctx, "alice").Return(key, nil)

		var out bytes.Buffer
		io := IOTuple{Writer: &out}

		err := RunGenerateKey(ctx, mockUseCase, logger, "alice", "text", io)

		require.NoError(t, err)
		require.Contains(t, out.String(), keyID.String())
		require.Contains(t, out.String(), "pkl_token")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("json output", func(t *testing.T) {
		mockUseCase := &mocks.MockKeyUseCase{}
		key := &apikeyDomain.APIKey{
			ID:         keyID,
			OwnerLogin: "bob",
			TokenValue: "pkl_other",
		}

		mockUseCase.On("Generate", ctx, "bob").Return(key, nil)

		var out bytes.Buffer
		io := IOTuple{Writer: &out}

		err := RunGenerateKey(ctx, mockUseCase, logger, "bob", "json", io)

		require.NoError(t, err)
		require.Contains(t, out.String(), `"token_value": "pkl_other"`)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("use case error propagated", func(t *testing.T) {
		mockUseCase := &mocks.MockKeyUseCase{}
		mockUseCase.On("Generate", ctx, "ghost").Return(nil, errors.New("account not found"))

		var out bytes.Buffer
		io := IOTuple{Writer: &out}

		err := RunGenerateKey(ctx, mockUseCase, logger, "ghost", "text", io)

		require.Error(t, err)
		mockUseCase.AssertExpectations(t)
	})
}
