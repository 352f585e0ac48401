package workflows

import (
	"errors"
	"time"

	"deckforge/internal/activities"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const QueryGetDeckProgress = "GetDeckProgress"

// DeckBuildWorkflow drives one deck run start to finish: optional source
// extraction, the accumulator loop inside one activity, assembly, and status
// bookkeeping. Batches are strictly sequential because later prompts depend
// on the dedup memory accumulated from earlier ones, so there is nothing to
// parallelize here.
func DeckBuildWorkflow(ctx workflow.Context, input DeckBuildInput) (string, error) {
	progress := DeckProgress{
		DeckID:      input.DeckID,
		CurrentStep: "init",
		Status:      "processing",
		Steps:       map[string]string{},
	}
	if err := workflow.SetQueryHandler(ctx, QueryGetDeckProgress, func() (DeckProgress, error) {
		return progress, nil
	}); err != nil {
		return "", err
	}

	ao := workflow.ActivityOptions{
		// Upper bound per attempt: max batches x chain length x per-call
		// timeout stays well under this for the shipped guardrails.
		StartToCloseTimeout: 10 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    20 * time.Second,
			MaximumAttempts:    2,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	_ = workflow.ExecuteActivity(ctx, "UpdateDeckStatusActivity", activities.UpdateDeckStatusInput{DeckID: input.DeckID, Status: "processing"}).Get(ctx, nil)

	sourceContext := ""
	if input.SourceID != "" {
		progress.CurrentStep = "extract_source"
		progress.Steps[progress.CurrentStep] = "processing"
		var srcOut activities.ExtractSourceTextOutput
		if err := workflow.ExecuteActivity(ctx, "ExtractSourceTextActivity", activities.ExtractSourceTextInput{SourceID: input.SourceID}).Get(ctx, &srcOut); err != nil {
			// Source grounding is supplemental; a deck can still be built
			// from the topic alone.
			progress.Steps[progress.CurrentStep] = "skipped"
		} else {
			sourceContext = srcOut.Text
			progress.Steps[progress.CurrentStep] = "done"
		}
	}

	progress.CurrentStep = "generate_slides"
	progress.Steps[progress.CurrentStep] = "processing"
	var genOut activities.GenerateSlidesOutput
	if err := workflow.ExecuteActivity(ctx, "GenerateSlidesActivity", activities.GenerateSlidesInput{
		DeckID:        input.DeckID,
		Topic:         input.Topic,
		Description:   input.Description,
		SlideCount:    input.SlideCount,
		SourceContext: sourceContext,
	}).Get(ctx, &genOut); err != nil {
		if kind, reason, terminal := terminalFailure(err); terminal {
			progress.Status = "failed"
			progress.FailKind = kind
			progress.FailReason = reason
			progress.Steps[progress.CurrentStep] = "failed"
			_ = workflow.ExecuteActivity(ctx, "UpdateDeckStatusActivity", activities.UpdateDeckStatusInput{
				DeckID:     input.DeckID,
				Status:     "failed",
				FailKind:   kind,
				FailReason: reason,
			}).Get(ctx, nil)
			return progress.Status, nil
		}
		return "", err
	}
	progress.Backend = genOut.Backend
	progress.Model = genOut.Model
	progress.Steps[progress.CurrentStep] = "done"

	progress.CurrentStep = "assemble"
	progress.Steps[progress.CurrentStep] = "processing"
	var asmOut activities.AssembleDeckOutput
	if err := workflow.ExecuteActivity(ctx, "AssembleDeckActivity", activities.AssembleDeckInput{
		DeckID: input.DeckID,
		Topic:  input.Topic,
		Slides: genOut.Slides,
	}).Get(ctx, &asmOut); err != nil {
		return "", err
	}
	progress.Steps[progress.CurrentStep] = "done"

	progress.CurrentStep = "mark_completed"
	progress.Steps[progress.CurrentStep] = "processing"
	if err := workflow.ExecuteActivity(ctx, "MarkDeckCompletedActivity", activities.MarkDeckCompletedInput{
		DeckID:  input.DeckID,
		OutPath: asmOut.OutPath,
		Backend: genOut.Backend,
		Model:   genOut.Model,
	}).Get(ctx, nil); err != nil {
		return "", err
	}
	progress.Steps[progress.CurrentStep] = "done"
	progress.CurrentStep = "done"
	progress.Status = "completed"
	return progress.Status, nil
}

// terminalFailure recognizes the generation failures that should mark the
// deck failed instead of failing the workflow run.
func terminalFailure(err error) (kind, reason string, terminal bool) {
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return "", "", false
	}
	switch appErr.Type() {
	case activities.ErrTypeInvalidRequest, activities.ErrTypeAllProvidersFailed, activities.ErrTypeUnparseableOutput:
		return appErr.Type(), appErr.Message(), true
	}
	return "", "", false
}
