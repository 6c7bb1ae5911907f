package energy

import (
	"testing"

	"github.com/leafmac/leafmac/radio"
	"github.com/stretchr/testify/assert"
)

func TestTransitionsAccumulateElapsedTime(t *testing.T) {
	tr := NewTracker()
	tr.EnterDisabled(0)
	tr.SetPowerState(radio.StateSleep, 1000)
	tr.EnterTx(1500)
	tr.SetPowerState(radio.StateSleep, 1700)

	s := tr.Snapshot(2000)
	assert.Equal(t, uint64(1000), s.SpentUs[phaseDisabled])
	assert.Equal(t, uint64(500), s.SpentUs[phaseTx])
	assert.Equal(t, uint64(300+500), s.SpentUs[phaseSleep])
	assert.Greater(t, s.TotalMJ, 0.0)
}

func TestSnapshotDoesNotCommitPhaseChange(t *testing.T) {
	tr := NewTracker()
	tr.SetPowerState(radio.StateSleep, 0)
	first := tr.Snapshot(100)
	second := tr.Snapshot(200)
	assert.Equal(t, uint64(100), first.SpentUs[phaseSleep])
	assert.Equal(t, uint64(200), second.SpentUs[phaseSleep])
}

func TestHistoryAccumulatesAcrossSnapshots(t *testing.T) {
	tr := NewTracker()
	tr.SetPowerState(radio.StateSleep, 0)
	tr.Snapshot(10)
	tr.Snapshot(20)
	assert.Len(t, tr.History(), 2)
	tr.Reset()
	assert.Empty(t, tr.History())
}
