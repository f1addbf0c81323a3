package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/sepsi77/voltikka-sub000/internal/domain"
)

// ContractRepository is an in-memory implementation of
// domain.ContractRepository, used by the CLI and tests. It is a stand-in
// for the real persistence collaborator, not a persistence strategy.
type ContractRepository struct {
	mu        sync.RWMutex
	contracts map[uuid.UUID]*domain.Contract
}

// NewContractRepository creates an empty in-memory contract repository
func NewContractRepository() *ContractRepository {
	return &ContractRepository{
		contracts: make(map[uuid.UUID]*domain.Contract),
	}
}

// Put stores or replaces a contract after validating it
func (r *ContractRepository) Put(contract *domain.Contract) error {
	if err := contract.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.contracts[contract.ID] = contract
	return nil
}

// GetByID retrieves a contract by its ID
func (r *ContractRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Contract, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	contract, ok := r.contracts[id]
	if !ok {
		return nil, domain.ErrContractNotFound
	}
	return contract, nil
}
