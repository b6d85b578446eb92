package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStation(servers int, mean float64) *Station {
	rng := NewPartitionedRNG(NewSimulationKey(1))
	return NewStation(0, StationConfig{Servers: servers, MeanServiceTime: mean}, rng)
}

func TestNewStation_DefaultName(t *testing.T) {
	st := newTestStation(1, 1.0)
	assert.Equal(t, "Station_0", st.Name)

	named := NewStation(3, StationConfig{Name: "Assembly", Servers: 2, MeanServiceTime: 1.5}, NewPartitionedRNG(1))
	assert.Equal(t, "Assembly", named.Name)
	assert.Equal(t, 3, named.ID)
}

func TestStation_TryStartService_FIFO(t *testing.T) {
	// GIVEN a single-server station with three queued jobs
	st := newTestStation(1, 1.0)
	st.Enqueue(10, 0)
	st.Enqueue(11, 0)
	st.Enqueue(12, 0)

	// WHEN service starts
	first, ok := st.TryStartService(0)
	require.True(t, ok)

	// THEN the earliest-enqueued job is served and the server is occupied
	assert.Equal(t, 10, first)
	assert.Equal(t, 1, st.ServersBusy)
	_, ok = st.TryStartService(0)
	assert.False(t, ok, "no server should be free")

	// WHEN the service completes, the next job in FIFO order is served
	st.CompleteService(1)
	second, ok := st.TryStartService(1)
	require.True(t, ok)
	assert.Equal(t, 11, second)
	assert.Equal(t, 3, st.TotalArrivals)
	assert.Equal(t, 1, st.TotalDepartures)
}

func TestStation_TryStartService_EmptyQueue(t *testing.T) {
	st := newTestStation(2, 1.0)
	_, ok := st.TryStartService(0)
	assert.False(t, ok)
	assert.Equal(t, 0, st.ServersBusy)
}

func TestStation_MultiServer_Occupancy(t *testing.T) {
	st := newTestStation(3, 1.0)
	for id := 0; id < 5; id++ {
		st.Enqueue(id, 0)
	}
	started := 0
	for {
		if _, ok := st.TryStartService(0); !ok {
			break
		}
		started++
	}
	assert.Equal(t, 3, started)
	assert.Equal(t, 3, st.ServersBusy)
	assert.Equal(t, 2, st.Queue.Len())
	assert.Equal(t, 5, st.InStation())
}

func TestStation_CompleteService_NoBusyServer_Panics(t *testing.T) {
	st := newTestStation(1, 1.0)
	assert.Panics(t, func() { st.CompleteService(1) })
}

func TestStation_TimeWeightedIntegrals(t *testing.T) {
	// GIVEN a single-server station driven through a known timeline:
	//   t=0 j0 arrives and starts, j1 queues
	//   t=2 j2 queues
	//   t=3 j0 completes, j1 starts
	//   t=5 j1 completes
	st := newTestStation(1, 1.0)
	st.Enqueue(0, 0)
	_, _ = st.TryStartService(0)
	st.Enqueue(1, 0)
	st.Enqueue(2, 2)
	st.CompleteService(3)
	_, _ = st.TryStartService(3)
	st.CompleteService(5)

	// THEN queue length integral = 1*2 + 2*1 + 1*2 = 6 and busy integral = 3 + 2 = 5
	assert.InDelta(t, 6.0, st.QueueLengthIntegral, 1e-12)
	assert.InDelta(t, 5.0, st.BusyServerIntegral, 1e-12)
	assert.InDelta(t, 1.2, st.AvgQueueLength(), 1e-12)
	assert.InDelta(t, 1.0, st.TimeAverageBusy(), 1e-12)
	assert.Equal(t, 5.0, st.LastUpdateTime)
}

func TestStation_Utilization(t *testing.T) {
	st := newTestStation(2, 1.0)

	// Before any service is observed, utilization and queue length report 0
	assert.Equal(t, 0.0, st.Utilization())
	assert.Equal(t, 0.0, st.AvgQueueLength())

	st.Enqueue(0, 0)
	_, _ = st.TryStartService(0)
	st.TotalServiceTime += 3
	st.CompleteService(4)

	// 3 units of service over 2 servers * 4 time units
	assert.InDelta(t, 3.0/8.0, st.Utilization(), 1e-12)
}

func TestStation_ResetStats_PreservesPhysicalState(t *testing.T) {
	// GIVEN a station with busy servers, a queue, and accumulated statistics
	st := newTestStation(1, 1.0)
	st.Enqueue(0, 0)
	_, _ = st.TryStartService(0)
	st.Enqueue(1, 1)
	st.TotalServiceTime = 4
	st.Enqueue(2, 3)

	// WHEN statistics are reset at t=3
	st.ResetStats(3)

	// THEN every accumulator is zero and the window starts at t=3
	assert.Zero(t, st.TotalArrivals)
	assert.Zero(t, st.TotalDepartures)
	assert.Zero(t, st.TotalServiceTime)
	assert.Zero(t, st.QueueLengthIntegral)
	assert.Zero(t, st.BusyServerIntegral)
	assert.Equal(t, 3.0, st.StatsResetTime)
	assert.Equal(t, 0.0, st.Elapsed())

	// AND the physical state is untouched
	assert.Equal(t, 1, st.ServersBusy)
	assert.Equal(t, []int{1, 2}, st.Queue.Items())

	// AND later statistics are measured from the reset point
	st.CompleteService(5)
	assert.InDelta(t, 4.0, st.QueueLengthIntegral, 1e-12)
	assert.InDelta(t, 2.0, st.AvgQueueLength(), 1e-12)
}

func TestStation_SampleServiceTime_DoesNotAccumulate(t *testing.T) {
	st := newTestStation(1, 2.0)
	for i := 0; i < 10; i++ {
		assert.Greater(t, st.SampleServiceTime(), 0.0)
	}
	assert.Zero(t, st.TotalServiceTime)
}

func TestStation_StatsUpdate_BackwardsTime_Panics(t *testing.T) {
	st := newTestStation(1, 1.0)
	st.Enqueue(0, 5)
	assert.Panics(t, func() { st.Enqueue(1, 4) })
}
