package app

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	commissionRepository "github.com/getachewzemene/minalesh-amplify-sub001/internal/commission/repository"
	commissionUsecase "github.com/getachewzemene/minalesh-amplify-sub001/internal/commission/usecase"
	inventoryRepository "github.com/getachewzemene/minalesh-amplify-sub001/internal/inventory/repository"
	inventoryUsecase "github.com/getachewzemene/minalesh-amplify-sub001/internal/inventory/usecase"
	orderRepository "github.com/getachewzemene/minalesh-amplify-sub001/internal/order/repository"
	webhookUsecase "github.com/getachewzemene/minalesh-amplify-sub001/internal/webhook/usecase"
)

// OrderRepository is the order store as seen by both the settlement pipeline and
// commission posting.
type OrderRepository interface {
	webhookUsecase.OrderRepository
	commissionUsecase.OrderReader
}

type orderComponents struct {
	orderRepo          OrderRepository
	reservationRepo    inventoryUsecase.ReservationRepository
	reservationUseCase inventoryUsecase.ReservationUseCase
	commissionRepo     commissionUsecase.CommissionRepository
	commissionUseCase  commissionUsecase.CommissionUseCase

	orderRepoInit          sync.Once
	reservationRepoInit    sync.Once
	reservationUseCaseInit sync.Once
	commissionRepoInit     sync.Once
	commissionUseCaseInit  sync.Once
}

// OrderRepository returns the order repository for the configured driver.
func (c *Container) OrderRepository() (OrderRepository, error) {
	var err error
	c.orderRepoInit.Do(func() {
		c.orderRepo, err = c.initOrderRepository()
		if err != nil {
			c.initErrors["orderRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["orderRepo"]; exists {
		return nil, storedErr
	}
	return c.orderRepo, nil
}

// ReservationRepository returns the inventory reservation repository for the configured driver.
func (c *Container) ReservationRepository() (inventoryUsecase.ReservationRepository, error) {
	var err error
	c.reservationRepoInit.Do(func() {
		c.reservationRepo, err = c.initReservationRepository()
		if err != nil {
			c.initErrors["reservationRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["reservationRepo"]; exists {
		return nil, storedErr
	}
	return c.reservationRepo, nil
}

// ReservationUseCase returns the inventory reservation use case.
func (c *Container) ReservationUseCase() (inventoryUsecase.ReservationUseCase, error) {
	var err error
	c.reservationUseCaseInit.Do(func() {
		c.reservationUseCase, err = c.initReservationUseCase()
		if err != nil {
			c.initErrors["reservationUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["reservationUseCase"]; exists {
		return nil, storedErr
	}
	return c.reservationUseCase, nil
}

// CommissionRepository returns the commission ledger repository for the configured driver.
func (c *Container) CommissionRepository() (commissionUsecase.CommissionRepository, error) {
	var err error
	c.commissionRepoInit.Do(func() {
		c.commissionRepo, err = c.initCommissionRepository()
		if err != nil {
			c.initErrors["commissionRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["commissionRepo"]; exists {
		return nil, storedErr
	}
	return c.commissionRepo, nil
}

// CommissionUseCase returns the commission use case using COMMISSION_RATE.
func (c *Container) CommissionUseCase() (commissionUsecase.CommissionUseCase, error) {
	var err error
	c.commissionUseCaseInit.Do(func() {
		c.commissionUseCase, err = c.initCommissionUseCase()
		if err != nil {
			c.initErrors["commissionUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["commissionUseCase"]; exists {
		return nil, storedErr
	}
	return c.commissionUseCase, nil
}

func (c *Container) initOrderRepository() (OrderRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for order repository: %w", err)
	}
	return selectByDriver[OrderRepository](c.config.DBDriver,
		func() OrderRepository { return orderRepository.NewPostgreSQLOrderRepository(db) },
		func() OrderRepository { return orderRepository.NewMySQLOrderRepository(db) },
	)
}

func (c *Container) initReservationRepository() (inventoryUsecase.ReservationRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for reservation repository: %w", err)
	}
	return selectByDriver[inventoryUsecase.ReservationRepository](c.config.DBDriver,
		func() inventoryUsecase.ReservationRepository {
			return inventoryRepository.NewPostgreSQLReservationRepository(db)
		},
		func() inventoryUsecase.ReservationRepository {
			return inventoryRepository.NewMySQLReservationRepository(db)
		},
	)
}

func (c *Container) initReservationUseCase() (inventoryUsecase.ReservationUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for reservation use case: %w", err)
	}
	repo, err := c.ReservationRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation repository for reservation use case: %w", err)
	}
	return inventoryUsecase.NewReservationUseCase(txManager, repo), nil
}

func (c *Container) initCommissionRepository() (commissionUsecase.CommissionRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for commission repository: %w", err)
	}
	return selectByDriver[commissionUsecase.CommissionRepository](c.config.DBDriver,
		func() commissionUsecase.CommissionRepository {
			return commissionRepository.NewPostgreSQLCommissionRepository(db)
		},
		func() commissionUsecase.CommissionRepository {
			return commissionRepository.NewMySQLCommissionRepository(db)
		},
	)
}

func (c *Container) initCommissionUseCase() (commissionUsecase.CommissionUseCase, error) {
	rate, err := decimal.NewFromString(c.config.CommissionRate)
	if err != nil {
		return nil, fmt.Errorf("invalid COMMISSION_RATE %q: %w", c.config.CommissionRate, err)
	}

	commissionRepo, err := c.CommissionRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get commission repository for commission use case: %w", err)
	}
	orderRepo, err := c.OrderRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get order repository for commission use case: %w", err)
	}

	useCase, err := commissionUsecase.NewCommissionUseCase(commissionRepo, orderRepo, rate)
	if err != nil {
		return nil, fmt.Errorf("failed to create commission use case: %w", err)
	}
	return useCase, nil
}
