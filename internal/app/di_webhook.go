package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	webhookDomain "github.com/getachewzemene/minalesh-amplify-sub001/internal/webhook/domain"
	webhookHTTP "github.com/getachewzemene/minalesh-amplify-sub001/internal/webhook/http"
	webhookRepository "github.com/getachewzemene/minalesh-amplify-sub001/internal/webhook/repository"
	webhookService "github.com/getachewzemene/minalesh-amplify-sub001/internal/webhook/service"
	webhookUsecase "github.com/getachewzemene/minalesh-amplify-sub001/internal/webhook/usecase"
)

// secretResolveTimeout bounds the KMS round trips made while resolving webhook secrets.
const secretResolveTimeout = 30 * time.Second

type webhookComponents struct {
	secretResolver    webhookService.SecretResolver
	webhookSecrets    webhookDomain.SecretConfig
	verifier          webhookService.SignatureVerifier
	eventRepo         webhookUsecase.EventRepository
	settlementUseCase webhookUsecase.SettlementUseCase
	eventUseCase      webhookUsecase.EventUseCase
	webhookHandler    *webhookHTTP.WebhookHandler
	eventHandler      *webhookHTTP.EventHandler

	secretResolverInit    sync.Once
	webhookSecretsInit    sync.Once
	verifierInit          sync.Once
	eventRepoInit         sync.Once
	settlementUseCaseInit sync.Once
	eventUseCaseInit      sync.Once
	webhookHandlerInit    sync.Once
	eventHandlerInit      sync.Once
}

// SecretResolver returns the KMS-backed webhook secret resolver.
func (c *Container) SecretResolver() webhookService.SecretResolver {
	c.secretResolverInit.Do(func() {
		c.secretResolver = webhookService.NewKMSSecretResolver()
	})
	return c.secretResolver
}

// WebhookSecrets returns the plaintext webhook secrets. When WEBHOOK_SECRETS_KMS_KEY_URI
// is set the configured values are decrypted once here.
func (c *Container) WebhookSecrets() (webhookDomain.SecretConfig, error) {
	var err error
	c.webhookSecretsInit.Do(func() {
		c.webhookSecrets, err = c.initWebhookSecrets()
		if err != nil {
			c.initErrors["webhookSecrets"] = err
		}
	})
	if err != nil {
		return webhookDomain.SecretConfig{}, err
	}
	if storedErr, exists := c.initErrors["webhookSecrets"]; exists {
		return webhookDomain.SecretConfig{}, storedErr
	}
	return c.webhookSecrets, nil
}

// Verifier returns the webhook signature verifier.
func (c *Container) Verifier() (webhookService.SignatureVerifier, error) {
	var err error
	c.verifierInit.Do(func() {
		c.verifier, err = c.initVerifier()
		if err != nil {
			c.initErrors["verifier"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["verifier"]; exists {
		return nil, storedErr
	}
	return c.verifier, nil
}

// EventRepository returns the webhook event ledger repository for the configured driver.
func (c *Container) EventRepository() (webhookUsecase.EventRepository, error) {
	var err error
	c.eventRepoInit.Do(func() {
		c.eventRepo, err = c.initEventRepository()
		if err != nil {
			c.initErrors["eventRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["eventRepo"]; exists {
		return nil, storedErr
	}
	return c.eventRepo, nil
}

// SettlementUseCase returns the settlement pipeline wrapped with business metrics.
func (c *Container) SettlementUseCase() (webhookUsecase.SettlementUseCase, error) {
	var err error
	c.settlementUseCaseInit.Do(func() {
		c.settlementUseCase, err = c.initSettlementUseCase()
		if err != nil {
			c.initErrors["settlementUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["settlementUseCase"]; exists {
		return nil, storedErr
	}
	return c.settlementUseCase, nil
}

// EventUseCase returns the ledger read/maintenance use case wrapped with business metrics.
func (c *Container) EventUseCase() (webhookUsecase.EventUseCase, error) {
	var err error
	c.eventUseCaseInit.Do(func() {
		c.eventUseCase, err = c.initEventUseCase()
		if err != nil {
			c.initErrors["eventUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["eventUseCase"]; exists {
		return nil, storedErr
	}
	return c.eventUseCase, nil
}

// WebhookHandler returns the HTTP handler for provider deliveries.
func (c *Container) WebhookHandler() (*webhookHTTP.WebhookHandler, error) {
	var err error
	c.webhookHandlerInit.Do(func() {
		c.webhookHandler, err = c.initWebhookHandler()
		if err != nil {
			c.initErrors["webhookHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["webhookHandler"]; exists {
		return nil, storedErr
	}
	return c.webhookHandler, nil
}

// EventHandler returns the HTTP handler for the admin ledger API.
func (c *Container) EventHandler() (*webhookHTTP.EventHandler, error) {
	var err error
	c.eventHandlerInit.Do(func() {
		c.eventHandler, err = c.initEventHandler()
		if err != nil {
			c.initErrors["eventHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["eventHandler"]; exists {
		return nil, storedErr
	}
	return c.eventHandler, nil
}

func (c *Container) initWebhookSecrets() (webhookDomain.SecretConfig, error) {
	configured := webhookDomain.SecretConfig{
		Generic:   c.config.WebhookGenericSecret,
		Providers: c.config.WebhookProviderSecrets,
	}

	ctx, cancel := context.WithTimeout(c.lifetime, secretResolveTimeout)
	defer cancel()

	resolved, err := c.SecretResolver().Resolve(ctx, c.config.WebhookSecretsKMSKeyURI, configured)
	if err != nil {
		return webhookDomain.SecretConfig{}, fmt.Errorf("failed to resolve webhook secrets: %w", err)
	}
	return resolved, nil
}

func (c *Container) initVerifier() (webhookService.SignatureVerifier, error) {
	secrets, err := c.WebhookSecrets()
	if err != nil {
		return nil, err
	}
	if secrets.Generic == "" && len(secrets.Providers) == 0 {
		c.Logger().Warn("no webhook secret configured, every delivery will be rejected")
	}
	return webhookService.NewVerifier(secrets, c.config.WebhookAllowPlainSecret, c.Logger()), nil
}

func (c *Container) initEventRepository() (webhookUsecase.EventRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for event repository: %w", err)
	}
	return selectByDriver[webhookUsecase.EventRepository](c.config.DBDriver,
		func() webhookUsecase.EventRepository { return webhookRepository.NewPostgreSQLEventRepository(db) },
		func() webhookUsecase.EventRepository { return webhookRepository.NewMySQLEventRepository(db) },
	)
}

func (c *Container) initSettlementUseCase() (webhookUsecase.SettlementUseCase, error) {
	tolerance, err := decimal.NewFromString(c.config.AmountTolerance)
	if err != nil {
		return nil, fmt.Errorf("invalid AMOUNT_TOLERANCE %q: %w", c.config.AmountTolerance, err)
	}
	if tolerance.IsNegative() {
		return nil, fmt.Errorf("invalid AMOUNT_TOLERANCE %q: must not be negative", c.config.AmountTolerance)
	}

	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for settlement use case: %w", err)
	}
	verifier, err := c.Verifier()
	if err != nil {
		return nil, fmt.Errorf("failed to get verifier for settlement use case: %w", err)
	}
	eventRepo, err := c.EventRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get event repository for settlement use case: %w", err)
	}
	orderRepo, err := c.OrderRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get order repository for settlement use case: %w", err)
	}
	reservations, err := c.ReservationUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation use case for settlement use case: %w", err)
	}
	dispatcher, err := c.OutboxDispatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox dispatcher for settlement use case: %w", err)
	}
	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for settlement use case: %w", err)
	}

	useCase := webhookUsecase.NewSettlementUseCase(
		txManager,
		verifier,
		webhookUsecase.NewLedger(eventRepo, c.config.WebhookStaleAfter),
		orderRepo,
		reservations,
		dispatcher,
		webhookUsecase.SettlementConfig{
			AmountTolerance: tolerance,
			RequireEventKey: c.config.WebhookRequireEventKey,
			SettleTimeout:   c.config.WebhookSettleTimeout,
		},
		c.Logger(),
	)
	return webhookUsecase.NewSettlementUseCaseWithMetrics(useCase, businessMetrics), nil
}

func (c *Container) initEventUseCase() (webhookUsecase.EventUseCase, error) {
	eventRepo, err := c.EventRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get event repository for event use case: %w", err)
	}
	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for event use case: %w", err)
	}
	return webhookUsecase.NewEventUseCaseWithMetrics(webhookUsecase.NewEventUseCase(eventRepo), businessMetrics), nil
}

func (c *Container) initWebhookHandler() (*webhookHTTP.WebhookHandler, error) {
	useCase, err := c.SettlementUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement use case for webhook handler: %w", err)
	}
	return webhookHTTP.NewWebhookHandler(useCase, c.config.WebhookMaxBodyBytes, c.Logger()), nil
}

func (c *Container) initEventHandler() (*webhookHTTP.EventHandler, error) {
	useCase, err := c.EventUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get event use case for event handler: %w", err)
	}
	return webhookHTTP.NewEventHandler(useCase, c.Logger()), nil
}
