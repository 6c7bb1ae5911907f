package replcmd

import (
	"testing"
	"time"

	"github.com/leafmac/leafmac/mac"
	"github.com/leafmac/leafmac/progctx"
	"github.com/leafmac/leafmac/radio/simradio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startRunner(t *testing.T) *Runner {
	t.Helper()
	params := simradio.DefaultParams()
	params.MediumBusyProb = 0
	params.NoAckProb = 0
	r := simradio.New(params)

	cfg := mac.DefaultConfig()
	cfg.IntervalMinUs = 1000
	cfg.IntervalMaxUs = 4000
	cfg.WakeupInterval = time.Millisecond
	cfg.QueueCapacity = 4

	core := mac.New(r, cfg, nil)
	ctx := progctx.New(nil)
	require.True(t, core.Start(ctx).Ok())
	t.Cleanup(func() {
		ctx.Cancel("test done")
		core.Wait()
	})
	return NewRunner(ctx, core, r)
}

func TestExecuteSetGetRoundTrip(t *testing.T) {
	rn := startRunner(t)

	reply, quit := rn.Execute("set duty_cycling 1")
	assert.False(t, quit)
	assert.Equal(t, "Done", reply)

	reply, quit = rn.Execute("get duty_cycling")
	assert.False(t, quit)
	assert.Equal(t, "1", reply)
}

func TestExecuteUnknownCommandReportsError(t *testing.T) {
	rn := startRunner(t)
	reply, quit := rn.Execute("bogus")
	assert.False(t, quit)
	assert.Contains(t, reply, "Error")
}

func TestExecuteExitQuits(t *testing.T) {
	rn := startRunner(t)
	reply, quit := rn.Execute("exit")
	assert.True(t, quit)
	assert.Equal(t, "bye", reply)
}

func TestPlayScenarioColdStartBeaconThenSleep(t *testing.T) {
	rn := startRunner(t)

	src := []byte(`
scenario cold_start
set duty_cycling 1
wait 50
fire tx_complete
wait 20
assert state SLEEP
`)
	require.NoError(t, rn.PlayScenario(src))
}

func TestPlayScenarioAdditionalWakeupReturnsToSleepOnce(t *testing.T) {
	rn := startRunner(t)

	src := []byte(`
scenario additional_wakeup
set duty_cycling 1
wait 50
fire tx_complete_pending
wait 20
assert state LISTEN
fire rx_pending
fire rx_complete
wait 20
assert state LISTEN
fire rx_complete
wait 20
assert state SLEEP
`)
	require.NoError(t, rn.PlayScenario(src))
}

func TestHelpMentionsAllCommands(t *testing.T) {
	h := Help()
	for _, want := range []string{"send", "set", "get", "fire", "rx", "state", "energy", "exit"} {
		assert.Contains(t, h, want)
	}
}
