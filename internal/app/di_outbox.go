package app

import (
	"fmt"
	"sync"

	notificationService "github.com/getachewzemene/minalesh-amplify-sub001/internal/notification/service"
	outboxRepository "github.com/getachewzemene/minalesh-amplify-sub001/internal/outbox/repository"
	outboxUsecase "github.com/getachewzemene/minalesh-amplify-sub001/internal/outbox/usecase"
)

type outboxComponents struct {
	outboxRepo       outboxUsecase.OutboxEventRepository
	outboxDispatcher *outboxUsecase.Dispatcher
	notifier         notificationService.Notifier
	eventProcessor   outboxUsecase.EventProcessor
	outboxUseCase    outboxUsecase.UseCase

	outboxRepoInit       sync.Once
	outboxDispatcherInit sync.Once
	notifierInit         sync.Once
	eventProcessorInit   sync.Once
	outboxUseCaseInit    sync.Once
}

// OutboxRepository returns the outbox event repository for the configured driver.
func (c *Container) OutboxRepository() (outboxUsecase.OutboxEventRepository, error) {
	var err error
	c.outboxRepoInit.Do(func() {
		c.outboxRepo, err = c.initOutboxRepository()
		if err != nil {
			c.initErrors["outboxRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["outboxRepo"]; exists {
		return nil, storedErr
	}
	return c.outboxRepo, nil
}

// OutboxDispatcher returns the notifier the settlement pipeline uses to enqueue side effects.
func (c *Container) OutboxDispatcher() (*outboxUsecase.Dispatcher, error) {
	var err error
	c.outboxDispatcherInit.Do(func() {
		var repo outboxUsecase.OutboxEventRepository
		repo, err = c.OutboxRepository()
		if err != nil {
			c.initErrors["outboxDispatcher"] = err
			return
		}
		c.outboxDispatcher = outboxUsecase.NewDispatcher(repo)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["outboxDispatcher"]; exists {
		return nil, storedErr
	}
	return c.outboxDispatcher, nil
}

// Notifier returns the customer notification channel.
func (c *Container) Notifier() notificationService.Notifier {
	c.notifierInit.Do(func() {
		c.notifier = notificationService.NewLogNotifier(c.Logger())
	})
	return c.notifier
}

// EventProcessor returns the processor that applies settlement side effects.
func (c *Container) EventProcessor() (outboxUsecase.EventProcessor, error) {
	var err error
	c.eventProcessorInit.Do(func() {
		c.eventProcessor, err = c.initEventProcessor()
		if err != nil {
			c.initErrors["eventProcessor"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["eventProcessor"]; exists {
		return nil, storedErr
	}
	return c.eventProcessor, nil
}

// OutboxUseCase returns the outbox worker.
func (c *Container) OutboxUseCase() (outboxUsecase.UseCase, error) {
	var err error
	c.outboxUseCaseInit.Do(func() {
		c.outboxUseCase, err = c.initOutboxUseCase()
		if err != nil {
			c.initErrors["outboxUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["outboxUseCase"]; exists {
		return nil, storedErr
	}
	return c.outboxUseCase, nil
}

func (c *Container) initOutboxRepository() (outboxUsecase.OutboxEventRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for outbox repository: %w", err)
	}
	return selectByDriver[outboxUsecase.OutboxEventRepository](c.config.DBDriver,
		func() outboxUsecase.OutboxEventRepository {
			return outboxRepository.NewPostgreSQLOutboxEventRepository(db)
		},
		func() outboxUsecase.OutboxEventRepository {
			return outboxRepository.NewMySQLOutboxEventRepository(db)
		},
	)
}

func (c *Container) initEventProcessor() (outboxUsecase.EventProcessor, error) {
	orderRepo, err := c.OrderRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get order repository for event processor: %w", err)
	}
	reservations, err := c.ReservationUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation use case for event processor: %w", err)
	}
	commission, err := c.CommissionUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get commission use case for event processor: %w", err)
	}
	return outboxUsecase.NewSettlementEventProcessor(
		orderRepo,
		reservations,
		commission,
		c.Notifier(),
		c.Logger(),
	), nil
}

func (c *Container) initOutboxUseCase() (outboxUsecase.UseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for outbox use case: %w", err)
	}
	outboxRepo, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for outbox use case: %w", err)
	}
	processor, err := c.EventProcessor()
	if err != nil {
		return nil, fmt.Errorf("failed to get event processor for outbox use case: %w", err)
	}

	return outboxUsecase.NewOutboxUseCase(
		outboxUsecase.Config{
			Interval:   c.config.OutboxInterval,
			BatchSize:  c.config.OutboxBatchSize,
			MaxRetries: c.config.OutboxMaxRetries,
		},
		txManager,
		outboxRepo,
		processor,
		c.Logger(),
	), nil
}
