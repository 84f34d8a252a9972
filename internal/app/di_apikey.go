package app

import (
	"fmt"

	"github.com/pklabs/keygate/internal/apikey/domain"
	apikeyHTTP "github.com/pklabs/keygate/internal/apikey/http"
	apikeyRepository "github.com/pklabs/keygate/internal/apikey/repository"
	apikeyService "github.com/pklabs/keygate/internal/apikey/service"
	apikeyUseCase "github.com/pklabs/keygate/internal/apikey/usecase"
	"github.com/pklabs/keygate/internal/cache"
)

// cacheMaxItems bounds each lookup cache. Key entries are small, so the
// limit mostly guards against unbounded search result caching.
const cacheMaxItems = 10_000

// TokenService returns the token generation service.
func (c *Container) TokenService() apikeyService.TokenService {
	c.tokenServiceInit.Do(func() {
		c.tokenService = apikeyService.NewTokenService()
	})
	return c.tokenService
}

// KeyRepository returns the key repository based on database driver,
// wrapped with the lookup cache when caching is enabled.
func (c *Container) KeyRepository() (apikeyUseCase.KeyRepository, error) {
	var err error
	c.keyRepositoryInit.Do(func() {
		c.keyRepository, err = c.initKeyRepository()
		if err != nil {
			c.initErrors["keyRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyRepository"]; exists {
		return nil, storedErr
	}
	return c.keyRepository, nil
}

// KeyUseCase returns the key use case.
func (c *Container) KeyUseCase() (apikeyUseCase.KeyUseCase, error) {
	var err error
	c.keyUseCaseInit.Do(func() {
		c.keyUseCase, err = c.initKeyUseCase()
		if err != nil {
			c.initErrors["keyUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyUseCase"]; exists {
		return nil, storedErr
	}
	return c.keyUseCase, nil
}

// KeyHandler returns the HTTP handler for key management operations.
func (c *Container) KeyHandler() (*apikeyHTTP.KeyHandler, error) {
	var err error
	c.keyHandlerInit.Do(func() {
		c.keyHandler, err = c.initKeyHandler()
		if err != nil {
			c.initErrors["keyHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyHandler"]; exists {
		return nil, storedErr
	}
	return c.keyHandler, nil
}

// TokenHandler returns the HTTP handler for token issuance.
func (c *Container) TokenHandler() (*apikeyHTTP.TokenHandler, error) {
	var err error
	c.tokenHandlerInit.Do(func() {
		c.tokenHandler, err = c.initTokenHandler()
		if err != nil {
			c.initErrors["tokenHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenHandler"]; exists {
		return nil, storedErr
	}
	return c.tokenHandler, nil
}

// initKeyRepository creates the key repository based on the database driver.
func (c *Container) initKeyRepository() (apikeyUseCase.KeyRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for key repository: %w", err)
	}

	var repo apikeyUseCase.KeyRepository
	switch c.config.DBDriver {
	case "postgres":
		repo = apikeyRepository.NewPostgreSQLKeyRepository(db)
	case "mysql":
		repo = apikeyRepository.NewMySQLKeyRepository(db)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}

	if !c.config.CacheEnabled {
		return repo, nil
	}

	entryCache, err := cache.New[*domain.APIKey](cacheMaxItems)
	if err != nil {
		return nil, fmt.Errorf("failed to create key entry cache: %w", err)
	}

	listCache, err := cache.New[[]*domain.APIKey](cacheMaxItems)
	if err != nil {
		return nil, fmt.Errorf("failed to create key list cache: %w", err)
	}

	return apikeyRepository.NewCachedKeyRepository(
		repo,
		entryCache,
		listCache,
		c.config.CacheKeyTTL,
		c.config.CacheListTTL,
	), nil
}

// initKeyUseCase creates the key use case with all its dependencies.
func (c *Container) initKeyUseCase() (apikeyUseCase.KeyUseCase, error) {
	keyRepo, err := c.KeyRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get key repository for key use case: %w", err)
	}

	accountRepo, err := c.AccountRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get account repository for key use case: %w", err)
	}

	baseUseCase := apikeyUseCase.NewKeyUseCase(keyRepo, accountRepo, c.TokenService())

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for key use case: %w", err)
		}
		return apikeyUseCase.NewKeyUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initKeyHandler creates the key HTTP handler.
func (c *Container) initKeyHandler() (*apikeyHTTP.KeyHandler, error) {
	useCase, err := c.KeyUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get key use case for key handler: %w", err)
	}

	return apikeyHTTP.NewKeyHandler(useCase, c.Logger()), nil
}

// initTokenHandler creates the token issuance HTTP handler.
func (c *Container) initTokenHandler() (*apikeyHTTP.TokenHandler, error) {
	useCase, err := c.KeyUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get key use case for token handler: %w", err)
	}

	return apikeyHTTP.NewTokenHandler(useCase, c.Logger()), nil
}
