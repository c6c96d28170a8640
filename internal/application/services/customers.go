package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"fuellock/internal/apperr"
	"fuellock/internal/auth"
	"fuellock/internal/entities"
	"fuellock/internal/repository"
)

// Notifier sends outbound customer email.
type Notifier interface {
	SendWelcome(ctx context.Context, email, name string) error
}

// CustomersService manages the customer profile and its denormalized booking
// index.
type CustomersService struct {
	customers CustomersRepository
	notifier  Notifier
	logger    zerolog.Logger
}

func NewCustomersService(customers CustomersRepository, notifier Notifier, logger zerolog.Logger) *CustomersService {
	return &CustomersService{
		customers: customers,
		notifier:  notifier,
		logger:    logger,
	}
}

func (s *CustomersService) GetProfile(ctx context.Context, customerID string) (*entities.Customer, error) {
	customer, err := s.customers.GetByID(ctx, customerID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.UserNotFound()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile %s: %w", customerID, err)
	}
	return customer, nil
}

// CreateProfile registers the caller's profile from the token identity. The
// welcome email is fire and forget, a delivery failure never fails the
// signup.
func (s *CustomersService) CreateProfile(ctx context.Context, claims auth.Claims, plateNumbers []string) (*entities.Customer, error) {
	customer := &entities.Customer{
		CustomerID:   claims.UserCode,
		Email:        claims.Email,
		Name:         claims.Name,
		Role:         claims.Role,
		PlateNumbers: plateNumbers,
		Bookings:     []entities.BookingSummary{},
	}
	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, err
	}

	if err := s.notifier.SendWelcome(ctx, customer.Email, customer.Name); err != nil {
		s.logger.Err(err).Str("email", customer.Email).Msg("failed to send welcome email")
	}

	s.logger.Info().Str("customer_id", customer.CustomerID).Msg("profile created")
	return customer, nil
}

// UpdateProfile edits the fields the customer owns.
func (s *CustomersService) UpdateProfile(ctx context.Context, customerID, name string, plateNumbers []string) (*entities.Customer, error) {
	customer, err := s.customers.GetByID(ctx, customerID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.UserNotFound()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile %s: %w", customerID, err)
	}

	if name != "" {
		customer.Name = name
	}
	if plateNumbers != nil {
		customer.PlateNumbers = plateNumbers
	}
	if err := s.customers.Update(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}
