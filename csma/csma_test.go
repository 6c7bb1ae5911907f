package csma

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCSMALayerExhaustion(t *testing.T) {
	c := NewCSMALayer(3)
	assert.True(t, c.SendFailed())  // attempt 1 failed, 2 more allowed
	assert.True(t, c.SendFailed())  // attempt 2 failed, 1 more allowed
	assert.False(t, c.SendFailed()) // attempt 3 failed, exhausted
}

func TestCSMALayerSucceededResets(t *testing.T) {
	c := NewCSMALayer(2)
	assert.True(t, c.SendFailed())
	c.SendSucceeded()
	assert.True(t, c.SendFailed()) // counter reset, first failure allowed again
}

func TestRetryLayerZeroRetriesExhaustsImmediately(t *testing.T) {
	r := NewRetryLayer(0)
	assert.False(t, r.SendFailed())
}

func TestRetryLayerAllowsConfiguredRetries(t *testing.T) {
	r := NewRetryLayer(2)
	assert.True(t, r.SendFailed())
	assert.True(t, r.SendFailed())
	assert.False(t, r.SendFailed())
}
