package deck

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"deckforge/internal/providers"
)

// scriptedRouter replays canned responses in order and records every prompt.
type scriptedRouter struct {
	responses []string
	err       error
	prompts   []string
}

func (r *scriptedRouter) Execute(_ context.Context, messages []providers.Message) (string, providers.CandidateRef, error) {
	r.prompts = append(r.prompts, messages[len(messages)-1].Content)
	if r.err != nil {
		return "", providers.CandidateRef{}, r.err
	}
	i := len(r.prompts) - 1
	if i >= len(r.responses) {
		return "", providers.CandidateRef{Backend: "fake"}, nil
	}
	return r.responses[i], providers.CandidateRef{Backend: "fake", Model: "scripted"}, nil
}

func slideBlock(index int, title string) string {
	return fmt.Sprintf("# Slide %d\nTitle: %s\nParagraph: A paragraph about %s.\nBullets:\n- point one for %s\n- point two for %s\n- point three for %s\n",
		index, title, title, title, title, title)
}

func batchText(start int, titles ...string) string {
	b := strings.Builder{}
	for i, t := range titles {
		b.WriteString(slideBlock(start+i, t))
		b.WriteString("\n")
	}
	return b.String()
}

func testLimits() Limits {
	return Limits{MaxSlides: 40, BatchSize: 6, MaxEmptyBatches: 3, HistoryBulletCap: 200, BatchPause: 0}
}

func TestGenerateExactCountSingleBatch(t *testing.T) {
	router := &scriptedRouter{responses: []string{
		batchText(1, "Alpha", "Beta", "Gamma"),
	}}
	g := NewGenerator(router, testLimits())

	slides, err := g.Generate(context.Background(), Request{Topic: "Testing", SlideCount: 3})
	require.NoError(t, err)
	require.Len(t, slides, 3)
	require.Equal(t, "Alpha", slides[0].Title)
	require.Equal(t, "Gamma", slides[2].Title)
	require.Len(t, router.prompts, 1)
}

func TestGenerateShortBatchTriggersFollowup(t *testing.T) {
	// First call yields 4 valid blocks plus 2 malformed ones; the follow-up
	// must ask for exactly the 2 missing slides, numbered from Slide 5.
	first := batchText(1, "One", "Two", "Three", "Four") +
		"# Slide 5\nTitle: Broken\nBullets:\n- only\n- two bullets\n\n# Slide 6\nParagraph: no title here.\n"
	second := batchText(5, "Five", "Six")
	router := &scriptedRouter{responses: []string{first, second}}
	g := NewGenerator(router, testLimits())

	slides, err := g.Generate(context.Background(), Request{Topic: "Gaps", SlideCount: 6})
	require.NoError(t, err)
	require.Len(t, slides, 6)
	require.Equal(t, "Five", slides[4].Title)

	require.Len(t, router.prompts, 2)
	require.Contains(t, router.prompts[1], "generate 2 slides")
	require.Contains(t, router.prompts[1], "from Slide 5")
}

func TestGenerateRejectsDuplicateTitles(t *testing.T) {
	router := &scriptedRouter{responses: []string{
		batchText(1, "Same", "same ", "Other"),
		batchText(3, "Third"),
	}}
	g := NewGenerator(router, testLimits())

	slides, err := g.Generate(context.Background(), Request{Topic: "Dups", SlideCount: 3})
	require.NoError(t, err)
	require.Len(t, slides, 3)
	require.Equal(t, []string{"Same", "Other", "Third"}, []string{slides[0].Title, slides[1].Title, slides[2].Title})

	// The follow-up prompt carries the titles already used.
	require.Contains(t, router.prompts[1], "Previously used titles:")
	require.Contains(t, router.prompts[1], "same")
}

func TestGenerateEmptyBatchCircuitBreaker(t *testing.T) {
	router := &scriptedRouter{responses: []string{
		"total nonsense",
		"still nothing of value",
		"last garbage output",
	}}
	limits := testLimits()
	g := NewGenerator(router, limits)

	_, err := g.Generate(context.Background(), Request{Topic: "Noise", SlideCount: 2})
	var unparseable *UnparseableOutputError
	require.ErrorAs(t, err, &unparseable)
	require.Equal(t, limits.MaxEmptyBatches, unparseable.Batches)
	require.Equal(t, "last garbage output", unparseable.LastRaw)
	require.Len(t, router.prompts, limits.MaxEmptyBatches)
}

func TestGenerateAcceptedBatchResetsBreaker(t *testing.T) {
	router := &scriptedRouter{responses: []string{
		"garbage",
		"garbage",
		batchText(1, "Recover"),
		"garbage",
		"garbage",
		batchText(2, "Again"),
	}}
	g := NewGenerator(router, testLimits())

	slides, err := g.Generate(context.Background(), Request{Topic: "Flaky", SlideCount: 2})
	require.NoError(t, err)
	require.Len(t, slides, 2)
	require.Len(t, router.prompts, 6)
}

func TestGenerateDuplicateOnlyBatchCountsAsEmpty(t *testing.T) {
	router := &scriptedRouter{responses: []string{
		batchText(1, "Only"),
		batchText(2, "Only"),
		batchText(2, "only"),
		batchText(2, "ONLY"),
	}}
	g := NewGenerator(router, testLimits())

	_, err := g.Generate(context.Background(), Request{Topic: "Stuck", SlideCount: 2})
	var unparseable *UnparseableOutputError
	require.ErrorAs(t, err, &unparseable)
	require.Len(t, router.prompts, 4)
}

func TestGenerateInvalidRequests(t *testing.T) {
	router := &scriptedRouter{}
	g := NewGenerator(router, testLimits())

	for _, req := range []Request{
		{Topic: "", SlideCount: 5},
		{Topic: "   ", SlideCount: 5},
		{Topic: "Fine", SlideCount: 0},
		{Topic: "Fine", SlideCount: 41},
	} {
		_, err := g.Generate(context.Background(), req)
		var invalid *InvalidRequestError
		require.ErrorAs(t, err, &invalid, "request %+v", req)
	}
	require.Empty(t, router.prompts, "invalid requests must not reach the router")
}

func TestGenerateRouterErrorIsTerminal(t *testing.T) {
	exhausted := &providers.ExhaustedError{}
	router := &scriptedRouter{err: exhausted}
	g := NewGenerator(router, testLimits())

	_, err := g.Generate(context.Background(), Request{Topic: "Down", SlideCount: 4})
	require.ErrorIs(t, err, exhausted)
	require.Len(t, router.prompts, 1, "exhaustion must stop the loop immediately")
}

func TestGenerateHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := NewGenerator(&scriptedRouter{}, testLimits())

	_, err := g.Generate(ctx, Request{Topic: "Cancelled", SlideCount: 1})
	require.ErrorIs(t, err, context.Canceled)
}

func TestGenerateNotifyReports(t *testing.T) {
	router := &scriptedRouter{responses: []string{
		batchText(1, "A", "B"),
		batchText(3, "C"),
	}}
	g := NewGenerator(router, testLimits())
	var reports []BatchReport
	g.Notify = func(r BatchReport) { reports = append(reports, r) }

	_, err := g.Generate(context.Background(), Request{Topic: "Audit", SlideCount: 3})
	require.NoError(t, err)
	require.Len(t, reports, 2)
	require.Equal(t, 1, reports[0].Index)
	require.Equal(t, 2, reports[0].Accepted)
	require.Equal(t, 3, reports[1].Total)
	require.Equal(t, "fake", reports[1].Candidate.Backend)
}

func TestGenerateNeverReturnsShort(t *testing.T) {
	// Dry upstream: after the breaker threshold the caller gets an error,
	// never a partial deck.
	router := &scriptedRouter{responses: []string{batchText(1, "Lonely")}}
	g := NewGenerator(router, testLimits())

	slides, err := g.Generate(context.Background(), Request{Topic: "Short", SlideCount: 5})
	require.Error(t, err)
	require.Nil(t, slides)
	require.True(t, errors.As(err, new(*UnparseableOutputError)))
}
