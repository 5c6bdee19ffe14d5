// Package pipeline runs one sample, generate and publish cycle.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/pollquiz/internal/dataset"
	"github.com/abhisek/pollquiz/internal/llm"
	"github.com/abhisek/pollquiz/internal/quizgen"
)

// Generator turns a user prompt into a validated quiz.
type Generator interface {
	Generate(ctx context.Context, userPrompt string) (*quizgen.Quiz, error)
}

// Publisher posts a quiz.
type Publisher interface {
	Publish(ctx context.Context, q *quizgen.Quiz) error
}

// Runner holds the dependencies of one run. It keeps no state between runs.
type Runner struct {
	source    dataset.Source
	generator Generator
	publisher Publisher
	log       *zap.Logger

	// Rand picks the record. Nil uses the global source.
	Rand *rand.Rand
}

// New creates a Runner. publisher may be nil when only Preview is used.
func New(source dataset.Source, generator Generator, publisher Publisher, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{source: source, generator: generator, publisher: publisher, log: log}
}

// Run samples a record, generates a quiz and publishes it. The first error
// aborts the run and is returned unchanged.
func (r *Runner) Run(ctx context.Context) error {
	if r.publisher == nil {
		return errors.New("pipeline: no publisher configured")
	}

	ctx, log := r.startRun(ctx)
	start := time.Now()

	q, err := r.quiz(ctx, log)
	if err != nil {
		log.Error("run failed", zap.Error(err))
		return err
	}

	if err := r.publisher.Publish(ctx, q); err != nil {
		log.Error("run failed", zap.Error(err))
		return err
	}

	log.Info("run completed", zap.Duration("elapsed", time.Since(start)))
	return nil
}

// Preview runs the pipeline up to generation and returns the quiz without
// publishing it.
func (r *Runner) Preview(ctx context.Context) (*quizgen.Quiz, error) {
	ctx, log := r.startRun(ctx)
	return r.quiz(ctx, log)
}

func (r *Runner) startRun(ctx context.Context) (context.Context, *zap.Logger) {
	runID := uuid.NewString()
	log := r.log.With(zap.String("run_id", runID))
	log.Info("run started")
	return llm.WithRunID(ctx, runID), log
}

func (r *Runner) quiz(ctx context.Context, log *zap.Logger) (*quizgen.Quiz, error) {
	ds, err := r.source.Load(ctx)
	if err != nil {
		return nil, err
	}

	rec, err := ds.Sample(r.Rand)
	if err != nil {
		return nil, err
	}
	if len(rec) > 0 {
		log.Info("record sampled",
			zap.Int("rows", ds.Len()),
			zap.String("record", rec[0].Name+"="+rec[0].Value))
	}

	q, err := r.generator.Generate(ctx, quizgen.BuildUserPrompt(rec))
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, fmt.Errorf("pipeline: generator returned no quiz")
	}
	return q, nil
}
