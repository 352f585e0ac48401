package deck

import (
	"context"
	"fmt"
	"strings"
	"time"

	"deckforge/internal/providers"
)

// TextRouter is the upstream call surface the generator drives. Satisfied by
// providers.Router.
type TextRouter interface {
	Execute(ctx context.Context, messages []providers.Message) (string, providers.CandidateRef, error)
}

// Limits are the configured guardrails bounding work against an unreliable
// upstream. Zero values fall back to the shipped defaults.
type Limits struct {
	MaxSlides        int
	BatchSize        int
	MaxEmptyBatches  int
	HistoryBulletCap int
	BatchPause       time.Duration
}

func (l Limits) withDefaults() Limits {
	if l.MaxSlides <= 0 {
		l.MaxSlides = 40
	}
	if l.BatchSize <= 0 {
		l.BatchSize = 6
	}
	if l.MaxEmptyBatches <= 0 {
		l.MaxEmptyBatches = 3
	}
	if l.HistoryBulletCap <= 0 {
		l.HistoryBulletCap = 200
	}
	return l
}

// BatchReport describes one completed upstream batch, for audit and progress.
type BatchReport struct {
	Index     int
	Requested int
	Parsed    int
	Accepted  int
	Total     int
	Candidate providers.CandidateRef
}

// Generator is the control loop: compose prompt, execute via the fallback
// chain, parse, dedup, accept, until exactly the requested count exists or a
// guardrail trips. One Generator value serves one request at a time; separate
// requests get separate Memory, so independent runs share no mutable state.
type Generator struct {
	router TextRouter
	limits Limits

	// Notify, when set, observes each completed batch.
	Notify func(BatchReport)
}

func NewGenerator(router TextRouter, limits Limits) *Generator {
	return &Generator{router: router, limits: limits.withDefaults()}
}

// Generate produces exactly req.SlideCount slides in acceptance order, or a
// typed error. It never returns a short result: the caller gets the full deck
// or nothing.
func (g *Generator) Generate(ctx context.Context, req Request) ([]Slide, error) {
	req.Topic = strings.TrimSpace(req.Topic)
	if req.Topic == "" {
		return nil, &InvalidRequestError{Reason: "topic is required"}
	}
	if req.SlideCount < 1 || req.SlideCount > g.limits.MaxSlides {
		return nil, &InvalidRequestError{Reason: fmt.Sprintf("slides must be between 1 and %d", g.limits.MaxSlides)}
	}

	memory := NewMemory()
	accepted := make([]Slide, 0, req.SlideCount)
	emptyBatches := 0
	batchIndex := 0
	lastRaw := ""

	for len(accepted) < req.SlideCount {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		batchIndex++
		batchSize := g.limits.BatchSize
		if remaining := req.SlideCount - len(accepted); remaining < batchSize {
			batchSize = remaining
		}
		prompt := BuildBatchPrompt(batchSize, req.Topic, len(accepted)+1, req.Description, memory, g.limits.HistoryBulletCap)

		text, served, err := g.router.Execute(ctx, []providers.Message{{Role: "user", Content: prompt}})
		if err != nil {
			// Provider exhaustion is terminal: the chain already embodies
			// every known retry path.
			return nil, err
		}
		lastRaw = text

		parsed := ParseSlides(text)
		acceptedThisBatch := 0
		for _, s := range parsed {
			if len(accepted) >= req.SlideCount {
				break
			}
			if memory.SeenTitle(s.Title) {
				continue
			}
			accepted = append(accepted, s)
			memory.Observe(s)
			acceptedThisBatch++
		}

		if g.Notify != nil {
			g.Notify(BatchReport{
				Index:     batchIndex,
				Requested: batchSize,
				Parsed:    len(parsed),
				Accepted:  acceptedThisBatch,
				Total:     len(accepted),
				Candidate: served,
			})
		}

		// A batch yielding zero new slides, whether unparseable or fully
		// duplicate, counts toward the same circuit breaker.
		if acceptedThisBatch == 0 {
			emptyBatches++
			if emptyBatches >= g.limits.MaxEmptyBatches {
				return nil, &UnparseableOutputError{Batches: emptyBatches, LastRaw: lastRaw}
			}
		} else {
			emptyBatches = 0
		}

		if len(accepted) < req.SlideCount {
			g.pause(ctx)
		}
	}
	return accepted, nil
}

// pause throttles call rate between batches. Not a correctness requirement.
func (g *Generator) pause(ctx context.Context) {
	if g.limits.BatchPause <= 0 {
		return
	}
	t := time.NewTimer(g.limits.BatchPause)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
