package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"fuellock/internal/apperr"
	"fuellock/internal/entities"
	"fuellock/internal/repository"
	"fuellock/pkg/shortid"
)

// DealersService manages dealer accounts. Dealers are keyed by email, the
// identity the token carries.
type DealersService struct {
	dealers DealersRepository
	logger  zerolog.Logger
}

func NewDealersService(dealers DealersRepository, logger zerolog.Logger) *DealersService {
	return &DealersService{dealers: dealers, logger: logger}
}

func (s *DealersService) CreateDealer(ctx context.Context, name, email string) (*entities.Dealer, error) {
	_, err := s.dealers.GetByEmail(ctx, email)
	if err == nil {
		return nil, apperr.DealerAlreadyExists()
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check dealer %s: %w", email, err)
	}

	dealer := &entities.Dealer{
		DealerID:   shortid.New(),
		Name:       name,
		Email:      email,
		StationIDs: []string{},
	}
	if err := s.dealers.Create(ctx, dealer); err != nil {
		return nil, err
	}

	s.logger.Info().Str("dealer_id", dealer.DealerID).Str("email", email).Msg("dealer created")
	return dealer, nil
}

func (s *DealersService) GetDealer(ctx context.Context, email string) (*entities.Dealer, error) {
	dealer, err := s.dealers.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.DealerNotFound()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dealer %s: %w", email, err)
	}
	return dealer, nil
}
