package workers

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/exp/slog"
	"golang.org/x/sync/errgroup"
)

// Task is a unit of parallel work that a Gang runs to completion
type Task interface {
	// Name identifies the task in logs
	Name() string
	// PreStart is called exactly once, before any call to Work, with the number of workers
	// that will run the task
	PreStart(numWorkers uint)
	// Work is called once per worker, concurrently, with worker ids in [0, numWorkers)
	Work(workerID uint)
}

// Gang is a fixed-size group of workers. Each RunTask call starts a goroutine per active
// worker and returns once all of them have finished.
type Gang struct {
	logger        *slog.Logger
	maxWorkers    uint
	activeWorkers uint
}

// NewGang creates a Gang that will never run more than maxWorkers workers at once
func NewGang(logger *slog.Logger, maxWorkers uint) (*Gang, error) {
	if maxWorkers == 0 {
		return nil, errors.New("a worker gang requires at least one worker")
	}

	return &Gang{
		logger:        logger,
		maxWorkers:    maxWorkers,
		activeWorkers: maxWorkers,
	}, nil
}

func (g *Gang) MaxWorkers() uint { return g.maxWorkers }

// ActiveWorkers returns the number of workers used by the most recent RunTask call
func (g *Gang) ActiveWorkers() uint { return g.activeWorkers }

// RunTask runs task on numWorkers workers, clamped to [1, MaxWorkers]. Work has no way to fail:
// a worker that cannot continue panics, which takes down the process.
func (g *Gang) RunTask(task Task, numWorkers uint) {
	if numWorkers == 0 {
		numWorkers = 1
	} else if numWorkers > g.maxWorkers {
		numWorkers = g.maxWorkers
	}
	g.activeWorkers = numWorkers

	g.logger.Debug("Gang::RunTask", slog.String("Task", task.Name()), slog.Int("Workers", int(numWorkers)))

	task.PreStart(numWorkers)

	var group errgroup.Group
	for workerID := uint(0); workerID < numWorkers; workerID++ {
		workerID := workerID
		group.Go(func() error {
			task.Work(workerID)
			return nil
		})
	}

	_ = group.Wait()
}
