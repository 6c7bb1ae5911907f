package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScenarioOneColdStartBeaconThenSleep(t *testing.T) {
	src := []byte(`
scenario cold_start_beacon
set duty_cycling 1
fire tx_complete
assert state SLEEP
`)
	sc, err := Parse(src)
	require.NoError(t, err)
	assert.Equal(t, "cold_start_beacon", sc.Name)
	require.Len(t, sc.Steps, 3)
	require.NotNil(t, sc.Steps[0].Set)
	assert.Equal(t, "duty_cycling", sc.Steps[0].Set.Option)
	assert.Equal(t, 1, sc.Steps[0].Set.Value)
	require.NotNil(t, sc.Steps[1].Fire)
	assert.Equal(t, "tx_complete", sc.Steps[1].Fire.Event)
	require.NotNil(t, sc.Steps[2].Assert)
	assert.Equal(t, "SLEEP", sc.Steps[2].Assert.State)
}

func TestParseScenarioWithFramesAndWait(t *testing.T) {
	src := []byte(`
scenario queued_frame
send "AABB"
wait 5
fire tx_complete
`)
	sc, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, sc.Steps, 3)
	require.NotNil(t, sc.Steps[0].Send)
	assert.Equal(t, "AABB", sc.Steps[0].Send.Frame)
	require.NotNil(t, sc.Steps[1].Wait)
	assert.Equal(t, 5, sc.Steps[1].Wait.Millis)
}

func TestParseRejectsUnknownStep(t *testing.T) {
	_, err := Parse([]byte(`scenario bad
bogus step
`))
	assert.Error(t, err)
}
