package scheduler

import (
	"testing"

	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/stretchr/testify/assert"

	"fuellock/internal/entities"
)

func TestTopic(t *testing.T) {
	marshaler := cqrs.JSONMarshaler{GenerateName: cqrs.StructName}

	// the processor derives its subscribe topics from the same marshaler, so
	// the two sides can only drift if this scheme changes
	assert.Equal(t, "timers.entities.LockExpiryDue", Topic(marshaler.Name(entities.LockExpiryDue{})))
	assert.Equal(t, "timers.entities.PriceChangeDue", Topic(marshaler.Name(entities.PriceChangeDue{})))
}
