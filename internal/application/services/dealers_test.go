package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fuellock/internal/apperr"
)

func TestCreateDealer(t *testing.T) {
	service := NewDealersService(newFakeDealers(), zerolog.Nop())
	ctx := context.Background()

	dealer, err := service.CreateDealer(ctx, "Jo Dealer", "jo@example.com")
	require.NoError(t, err)
	assert.Len(t, dealer.DealerID, 8)
	assert.Equal(t, "jo@example.com", dealer.Email)
	assert.Empty(t, dealer.StationIDs)

	_, err = service.CreateDealer(ctx, "Jo Dealer", "jo@example.com")
	assert.ErrorIs(t, err, apperr.DealerAlreadyExists())

	got, err := service.GetDealer(ctx, "jo@example.com")
	require.NoError(t, err)
	assert.Equal(t, dealer.DealerID, got.DealerID)

	_, err = service.GetDealer(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, apperr.DealerNotFound())
}
