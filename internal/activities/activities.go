package activities

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"deckforge/internal/config"
	"deckforge/internal/deck"
	"deckforge/internal/models"
	"deckforge/internal/pptx"
	"deckforge/internal/providers"
	"deckforge/internal/storage"
	"deckforge/internal/util"

	"github.com/ledongthuc/pdf"
	"go.temporal.io/sdk/temporal"
)

// Application error types the workflow matches on to fail a deck gracefully
// instead of retrying.
const (
	ErrTypeInvalidRequest     = "InvalidRequest"
	ErrTypeAllProvidersFailed = "AllProvidersFailed"
	ErrTypeUnparseableOutput  = "UnparseableOutput"
)

type Activities struct {
	cfg       config.Config
	deckRepo  *storage.DeckRepo
	auditRepo *storage.CallAuditRepo
	router    *providers.Router
}

func New(cfg config.Config, db *storage.DB) (*Activities, error) {
	router, err := providers.NewRouter(cfg.Candidates, time.Duration(cfg.PromptTimeoutSecs)*time.Second)
	if err != nil {
		return nil, err
	}
	return &Activities{
		cfg:       cfg,
		deckRepo:  storage.NewDeckRepo(db),
		auditRepo: storage.NewCallAuditRepo(db),
		router:    router,
	}, nil
}

// GenerateSlidesActivity runs the whole accumulator loop for one deck. Its
// terminal failures are non-retryable: the fallback chain already embodies
// every known retry path, and invalid input never becomes valid on retry.
func (a *Activities) GenerateSlidesActivity(ctx context.Context, in GenerateSlidesInput) (GenerateSlidesOutput, error) {
	limits := deck.Limits{
		MaxSlides:        a.cfg.MaxSlides,
		BatchSize:        a.cfg.BatchSize,
		MaxEmptyBatches:  a.cfg.MaxEmptyBatches,
		HistoryBulletCap: a.cfg.HistoryBulletCap,
		BatchPause:       time.Duration(a.cfg.BatchPauseMillis) * time.Millisecond,
	}
	gen := deck.NewGenerator(a.router, limits)

	var batches int
	var served providers.CandidateRef
	gen.Notify = func(r deck.BatchReport) {
		batches = r.Index
		served = r.Candidate
		_ = a.auditRepo.Insert(ctx, models.ProviderCall{
			DeckID:     in.DeckID,
			BatchIndex: r.Index,
			Backend:    r.Candidate.Backend,
			Model:      r.Candidate.Model,
			Requested:  r.Requested,
			Parsed:     r.Parsed,
			Accepted:   r.Accepted,
			Status:     "ok",
		})
	}

	description := in.Description
	if strings.TrimSpace(in.SourceContext) != "" {
		description = strings.TrimSpace(description + "\n\nSOURCE MATERIAL (ground slide content in this):\n" + in.SourceContext)
	}

	slides, err := gen.Generate(ctx, deck.Request{
		Topic:       in.Topic,
		Description: description,
		SlideCount:  in.SlideCount,
	})
	if err != nil {
		return GenerateSlidesOutput{}, asApplicationError(err)
	}
	return GenerateSlidesOutput{Slides: slides, Batches: batches, Backend: served.Backend, Model: served.Model}, nil
}

func asApplicationError(err error) error {
	var invalid *deck.InvalidRequestError
	if errors.As(err, &invalid) {
		return temporal.NewNonRetryableApplicationError(invalid.Error(), ErrTypeInvalidRequest, err)
	}
	var exhausted *providers.ExhaustedError
	if errors.As(err, &exhausted) {
		return temporal.NewNonRetryableApplicationError(exhausted.Error(), ErrTypeAllProvidersFailed, err, exhausted.Reasons())
	}
	var unparseable *deck.UnparseableOutputError
	if errors.As(err, &unparseable) {
		return temporal.NewNonRetryableApplicationError(unparseable.Error(), ErrTypeUnparseableOutput, err, unparseable.LastRaw)
	}
	return err
}

func (a *Activities) AssembleDeckActivity(ctx context.Context, in AssembleDeckInput) (AssembleDeckOutput, error) {
	_ = ctx
	data, err := pptx.Assemble(in.Topic, in.Slides)
	if err != nil {
		return AssembleDeckOutput{}, fmt.Errorf("assemble deck: %w", err)
	}
	outPath := filepath.Join(a.cfg.DeckOutRoot, in.DeckID+".pptx")
	if err := util.WriteFileAtomic(outPath, data); err != nil {
		return AssembleDeckOutput{}, err
	}
	return AssembleDeckOutput{OutPath: outPath}, nil
}

func (a *Activities) ExtractSourceTextActivity(ctx context.Context, in ExtractSourceTextInput) (ExtractSourceTextOutput, error) {
	_ = ctx
	path := util.SafeJoin(a.cfg.SourceRoot, in.SourceID+".pdf")
	f, r, err := pdf.Open(path)
	if err != nil {
		return ExtractSourceTextOutput{}, fmt.Errorf("open source pdf: %w", err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return ExtractSourceTextOutput{}, fmt.Errorf("extract source text: %w", err)
	}
	buf := new(strings.Builder)
	if _, err := io.Copy(buf, reader); err != nil {
		return ExtractSourceTextOutput{}, fmt.Errorf("read extracted text: %w", err)
	}
	text := util.SanitizeText(buf.String())
	text = util.TruncateRunes(text, a.cfg.SourceContextLimit)
	return ExtractSourceTextOutput{Text: text}, nil
}

func (a *Activities) UpdateDeckStatusActivity(ctx context.Context, in UpdateDeckStatusInput) error {
	return a.deckRepo.UpdateStatus(ctx, in.DeckID, in.Status, in.FailKind, in.FailReason)
}

func (a *Activities) MarkDeckCompletedActivity(ctx context.Context, in MarkDeckCompletedInput) error {
	return a.deckRepo.MarkCompleted(ctx, in.DeckID, in.OutPath, in.Backend, in.Model)
}
