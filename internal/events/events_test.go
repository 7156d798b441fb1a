package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopSwallowsEvents(t *testing.T) {
	var p Publisher = Noop{}
	assert.NoError(t, p.Publish(context.Background(), CarCreated, CarEvent{CarID: 1}))
	p.Close()
}

func TestCarEventShape(t *testing.T) {
	b, err := json.Marshal(CarEvent{CarID: 7, UserID: 3, Title: "Cobalt", Price: 12000, At: "2025-03-01T10:00:00.000000Z"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"carId":7,"userId":3,"title":"Cobalt","price":12000,"at":"2025-03-01T10:00:00.000000Z"}`, string(b))
}
