package routing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Adapter compiles a single source into a single target, returning the
// output reported for the pair.
type Adapter interface {
	Compile(ctx context.Context, source, target string) (string, error)
}

// CompileCodes compiles every request into each of its targets, in the order
// given. The first failing pair aborts the batch and no results are returned.
func CompileCodes(ctx context.Context, adapter Adapter, requests []CompilationRequest) ([]CodeCompilation, error) {
	batchID := uuid.NewString()
	start := time.Now()

	logger := log.With().Str("batch", batchID).Logger()
	logger.Debug().Int("requests", len(requests)).Msg("compiling batch")

	compilations := make([]CodeCompilation, 0, len(requests))

	for i, request := range requests {
		results := make([]CompilationResult, 0, len(request.Targets))

		for _, target := range request.Targets {
			output, err := adapter.Compile(ctx, request.Source, target)

			if err != nil {
				logger.Warn().Err(err).
					Int("request", i).
					Str("target", target).
					Msg("compilation failed, aborting batch")

				return nil, err
			}

			results = append(results, CompilationResult{Target: target, Output: output})
		}

		compilations = append(compilations, CodeCompilation{Source: request.Source, Results: results})
	}

	logger.Info().
		Int("requests", len(requests)).
		Dur("duration", time.Since(start)).
		Msg("compiled batch")

	return compilations, nil
}
