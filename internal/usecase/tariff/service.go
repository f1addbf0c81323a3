package tariff

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sepsi77/voltikka-sub000/internal/domain"
)

// Service prices contracts fetched from the contract collaborator.
// The arithmetic itself lives in Calculate; the service only resolves the
// contract and logs.
type Service struct {
	contracts domain.ContractRepository
	policy    SplitPolicy
	logger    *zap.Logger
}

// NewService creates a new tariff pricing Service
func NewService(contracts domain.ContractRepository, policy SplitPolicy, logger *zap.Logger) *Service {
	return &Service{
		contracts: contracts,
		policy:    policy,
		logger:    logger,
	}
}

// AnnualCost computes the yearly cost of the given consumption under the
// contract identified by contractID
func (s *Service) AnnualCost(ctx context.Context, contractID uuid.UUID, req CostRequest) (*CostResult, error) {
	contract, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, fmt.Errorf("failed to load contract %s: %w", contractID, err)
	}

	result, err := Calculate(contract, req, s.policy)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("annual cost calculated",
		zap.String("contract", contract.Name),
		zap.String("metering", string(contract.Metering)),
		zap.String("total_cost", result.TotalCost.String()),
	)
	return result, nil
}
