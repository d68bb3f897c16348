// Package concurrent provides parallel record classification.
// It implements a bounded worker pool that writes each result back into the
// position of its input record, so the output order never depends on
// scheduling.
package concurrent

import (
	"context"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"recat/internal/classify"
	"recat/internal/errors"
	"recat/internal/exercise"
)

// MaxWorkers caps the default pool size.
const MaxWorkers = 8

// Processor orchestrates concurrent classification of exercise records.
// It shares one Engine between workers; the engine keeps no per-record state,
// and each worker writes only the result slot of the record it was given.
type Processor struct {
	engine      *classify.Engine
	logger      *zap.Logger
	workerCount int
}

// DefaultWorkerCount returns the number of CPUs, capped at MaxWorkers.
func DefaultWorkerCount() int {
	workerCount := runtime.NumCPU()
	if workerCount > MaxWorkers {
		workerCount = MaxWorkers
	}
	return workerCount
}

// NewProcessor creates a Processor. A workerCount below one selects
// DefaultWorkerCount; a nil logger discards diagnostics.
func NewProcessor(engine *classify.Engine, workerCount int, logger *zap.Logger) *Processor {
	if workerCount < 1 {
		workerCount = DefaultWorkerCount()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Processor{
		engine:      engine,
		logger:      logger,
		workerCount: workerCount,
	}
}

// WorkerCount returns the pool size.
func (p *Processor) WorkerCount() int {
	return p.workerCount
}

// ClassifyAll classifies every record and returns the updated records and the
// change list, both in input order. The first failing record cancels the
// remaining work and its error is returned.
func (p *Processor) ClassifyAll(ctx context.Context, records []exercise.Record) ([]exercise.Record, []exercise.Change, error) {
	results := make([]classify.Result, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workerCount)

	p.logger.Debug("Classifying records",
		zap.Int("records", len(records)),
		zap.Int("workers", p.workerCount))

	for i := range records {
		if gctx.Err() != nil {
			break
		}

		i := i
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			res, err := p.engine.ClassifyRecord(records[i])
			if err != nil {
				p.logger.Warn("Classification failed",
					zap.Int("index", i),
					zap.String("name", records[i].Name()),
					zap.Error(err))
				return err
			}
			if res.Changed {
				p.logger.Debug("Record recategorized",
					zap.String("id", records[i].IDString()),
					zap.String("from", res.Change.From),
					zap.String("to", res.Change.To))
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, nil, errors.NewCancelledError(ctx.Err())
		}
		return nil, nil, err
	}
	if ctx.Err() != nil {
		return nil, nil, errors.NewCancelledError(ctx.Err())
	}

	updated, changes := classify.Collect(results)
	return updated, changes, nil
}
