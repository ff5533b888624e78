package workers_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/gcheap/workers"
	"golang.org/x/exp/slog"
)

type recordingTask struct {
	preStarts  atomic.Int32
	numWorkers uint

	lock    sync.Mutex
	workers map[uint]int
}

func (t *recordingTask) Name() string { return "Recording" }

func (t *recordingTask) PreStart(numWorkers uint) {
	t.preStarts.Add(1)
	t.numWorkers = numWorkers
	t.workers = make(map[uint]int)
}

func (t *recordingTask) Work(workerID uint) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.workers[workerID]++
}

func TestNewGang(t *testing.T) {
	_, err := workers.NewGang(slog.Default(), 0)
	require.Error(t, err)

	gang, err := workers.NewGang(slog.Default(), 6)
	require.NoError(t, err)
	require.Equal(t, uint(6), gang.MaxWorkers())
	require.Equal(t, uint(6), gang.ActiveWorkers())
}

func TestRunTask(t *testing.T) {
	gang, err := workers.NewGang(slog.Default(), 8)
	require.NoError(t, err)

	testCases := map[string]struct {
		requested uint
		expected  uint
	}{
		"None":    {requested: 0, expected: 1},
		"One":     {requested: 1, expected: 1},
		"Some":    {requested: 5, expected: 5},
		"All":     {requested: 8, expected: 8},
		"TooMany": {requested: 20, expected: 8},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			task := &recordingTask{}
			gang.RunTask(task, testCase.requested)

			require.Equal(t, int32(1), task.preStarts.Load())
			require.Equal(t, testCase.expected, task.numWorkers)
			require.Equal(t, testCase.expected, gang.ActiveWorkers())
			require.Len(t, task.workers, int(testCase.expected))

			for workerID := uint(0); workerID < testCase.expected; workerID++ {
				require.Equal(t, 1, task.workers[workerID])
			}
		})
	}
}
