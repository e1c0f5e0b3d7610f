package outbox_test

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sharedApplication "github.com/dorakingx/subscryption/internal/shared/application"
	sharedDomain "github.com/dorakingx/subscryption/internal/shared/domain"
	"github.com/dorakingx/subscryption/internal/shared/infrastructure/outbox"
)

type planOpened struct {
	sharedDomain.BaseEvent
	PlanID int64
}

func TestNewMessage_MetadataKeepsActor(t *testing.T) {
	actor := sharedDomain.NewIdentity("acct-owner")

	event := &planOpened{
		BaseEvent: sharedDomain.NewBaseEvent(uuid.New(), "plan", "billing.plan.created"),
		PlanID:    1,
	}
	metadata := sharedApplication.NewEventMetadata(actor)
	sharedApplication.ApplyEventMetadata([]sharedDomain.DomainEvent{event}, metadata)

	msg, err := outbox.NewMessage(event)
	require.NoError(t, err)

	var decoded sharedDomain.EventMetadata
	require.NoError(t, json.Unmarshal(msg.Metadata, &decoded))

	assert.Equal(t, actor, decoded.Actor)
	assert.Equal(t, metadata.CorrelationID, decoded.CorrelationID)
	assert.Equal(t, metadata.CausationID, decoded.CausationID)

	// The raw JSON carries the account value, not an empty object
	assert.Contains(t, string(msg.Metadata), `"acct-owner"`)
}

func TestNewMessage_CarriesEventEnvelope(t *testing.T) {
	event := &planOpened{
		BaseEvent: sharedDomain.NewBaseEvent(uuid.New(), "plan", "billing.plan.created"),
		PlanID:    7,
	}

	msg, err := outbox.NewMessage(event)
	require.NoError(t, err)

	assert.Equal(t, event.EventID(), msg.EventID)
	assert.Equal(t, event.AggregateID(), msg.AggregateID)
	assert.Equal(t, "plan", msg.AggregateType)
	assert.Equal(t, "billing.plan.created", msg.RoutingKey)
	assert.Equal(t, event.OccurredAt(), msg.CreatedAt)
	assert.Nil(t, msg.PublishedAt)
}
