package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
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
	"deckforge/internal/workflows"

	"github.com/google/uuid"
	enumspb "go.temporal.io/api/enums/v1"
	tclient "go.temporal.io/sdk/client"
)

type Server struct {
	cfg       config.Config
	db        *storage.DB
	deckRepo  *storage.DeckRepo
	auditRepo *storage.CallAuditRepo
	router    *providers.Router
	temporal  tclient.Client
}

func NewServer(cfg config.Config) *Server {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := storage.NewDB(ctx, cfg.PostgresURL)
	if err != nil {
		panic(err)
	}
	router, err := providers.NewRouter(cfg.Candidates, time.Duration(cfg.PromptTimeoutSecs)*time.Second)
	if err != nil {
		panic(err)
	}
	tc, err := tclient.Dial(tclient.Options{HostPort: cfg.TemporalAddress})
	if err != nil {
		panic(err)
	}
	return &Server{
		cfg:       cfg,
		db:        db,
		deckRepo:  storage.NewDeckRepo(db),
		auditRepo: storage.NewCallAuditRepo(db),
		router:    router,
		temporal:  tc,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/decks", s.handleDecks)
	mux.HandleFunc("/decks/generate", s.handleGenerateSync)
	mux.HandleFunc("/decks/", s.handleDecksScoped)
	mux.HandleFunc("/sources", s.handleSources)
	return withCORS(mux)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

type deckRequest struct {
	Topic       string `json:"topic"`
	Description string `json:"description"`
	Slides      int    `json:"slides"`
	SourceID    string `json:"source_id"`
}

func (s *Server) decodeDeckRequest(r *http.Request) (deckRequest, error) {
	var req deckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return deckRequest{}, fmt.Errorf("invalid json: %w", err)
	}
	req.Topic = strings.TrimSpace(req.Topic)
	if req.Slides == 0 {
		req.Slides = 10
	}
	if req.Topic == "" {
		return deckRequest{}, fmt.Errorf("topic is required")
	}
	if req.Slides < 1 || req.Slides > s.cfg.MaxSlides {
		return deckRequest{}, fmt.Errorf("slides must be between 1 and %d", s.cfg.MaxSlides)
	}
	return req, nil
}

func (s *Server) handleDecks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		decks, err := s.deckRepo.ListDecks(r.Context(), 50)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"decks": decks})
	case http.MethodPost:
		req, err := s.decodeDeckRequest(r)
		if err != nil {
			writeErr(w, http.StatusBadRequest, err)
			return
		}
		deckID := uuid.NewString()
		if err := s.deckRepo.CreateDeck(r.Context(), models.Deck{
			DeckID:      deckID,
			Topic:       req.Topic,
			Description: req.Description,
			SlideCount:  req.Slides,
			SourceID:    req.SourceID,
		}); err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		we, err := s.temporal.ExecuteWorkflow(r.Context(), tclient.StartWorkflowOptions{
			ID:                                       "deck-" + deckID,
			TaskQueue:                                s.cfg.TemporalTaskQueue,
			WorkflowIDReusePolicy:                    enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
			WorkflowExecutionErrorWhenAlreadyStarted: true,
		}, workflows.DeckBuildWorkflow, workflows.DeckBuildInput{
			DeckID:      deckID,
			Topic:       req.Topic,
			Description: req.Description,
			SlideCount:  req.Slides,
			SourceID:    req.SourceID,
		})
		if err != nil {
			writeErr(w, http.StatusConflict, err)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]any{"deck_id": deckID, "workflow_id": we.GetID(), "run_id": we.GetRunID()})
	default:
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
	}
}

func (s *Server) handleDecksScoped(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/decks/"), "/"), "/")
	if len(parts) < 1 || parts[0] == "" {
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
		return
	}
	deckID := parts[0]

	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
			return
		}
		d, err := s.deckRepo.GetDeck(r.Context(), deckID)
		if err != nil {
			writeErr(w, http.StatusNotFound, err)
			return
		}
		writeJSON(w, http.StatusOK, d)
		return
	}

	switch parts[1] {
	case "progress":
		if r.Method != http.MethodGet {
			writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
			return
		}
		var prog workflows.DeckProgress
		resp, err := s.temporal.QueryWorkflow(r.Context(), "deck-"+deckID, "", workflows.QueryGetDeckProgress)
		if err != nil {
			// Fall back to DB status when no live workflow answers the query.
			d, dErr := s.deckRepo.GetDeck(r.Context(), deckID)
			if dErr != nil {
				writeErr(w, http.StatusNotFound, dErr)
				return
			}
			writeJSON(w, http.StatusOK, workflows.DeckProgress{
				DeckID:     d.DeckID,
				Status:     d.Status,
				FailKind:   d.FailKind,
				FailReason: d.FailReason,
				Backend:    d.Backend,
				Model:      d.Model,
			})
			return
		}
		if err := resp.Get(&prog); err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, prog)
	case "calls":
		if r.Method != http.MethodGet {
			writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
			return
		}
		calls, err := s.auditRepo.ListByDeck(r.Context(), deckID)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"calls": calls})
	case "download":
		if r.Method != http.MethodGet {
			writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
			return
		}
		d, err := s.deckRepo.GetDeck(r.Context(), deckID)
		if err != nil {
			writeErr(w, http.StatusNotFound, err)
			return
		}
		if d.Status != "completed" || d.OutPath == "" {
			writeErr(w, http.StatusConflict, fmt.Errorf("deck not completed (status=%s)", d.Status))
			return
		}
		w.Header().Set("Content-Type", pptx.ContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", pptx.Filename(d.Topic)))
		http.ServeFile(w, r, d.OutPath)
	default:
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
	}
}

// handleGenerateSync runs the pipeline in-process and streams the artifact,
// mirroring the async path's bookkeeping. The caller receives either a
// complete deck or a structured error, never a short artifact.
func (s *Server) handleGenerateSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	req, err := s.decodeDeckRequest(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}

	deckID := uuid.NewString()
	if err := s.deckRepo.CreateDeck(r.Context(), models.Deck{
		DeckID:      deckID,
		Topic:       req.Topic,
		Description: req.Description,
		SlideCount:  req.Slides,
	}); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	gen := deck.NewGenerator(s.router, deck.Limits{
		MaxSlides:        s.cfg.MaxSlides,
		BatchSize:        s.cfg.BatchSize,
		MaxEmptyBatches:  s.cfg.MaxEmptyBatches,
		HistoryBulletCap: s.cfg.HistoryBulletCap,
		BatchPause:       time.Duration(s.cfg.BatchPauseMillis) * time.Millisecond,
	})
	var served providers.CandidateRef
	gen.Notify = func(rep deck.BatchReport) {
		served = rep.Candidate
		_ = s.auditRepo.Insert(r.Context(), models.ProviderCall{
			DeckID:     deckID,
			BatchIndex: rep.Index,
			Backend:    rep.Candidate.Backend,
			Model:      rep.Candidate.Model,
			Requested:  rep.Requested,
			Parsed:     rep.Parsed,
			Accepted:   rep.Accepted,
			Status:     "ok",
		})
	}

	slides, err := gen.Generate(r.Context(), deck.Request{
		Topic:       req.Topic,
		Description: req.Description,
		SlideCount:  req.Slides,
	})
	if err != nil {
		s.writeGenerationError(w, r.Context(), deckID, err)
		return
	}

	data, err := pptx.Assemble(req.Topic, slides)
	if err != nil {
		_ = s.deckRepo.UpdateStatus(r.Context(), deckID, "failed", "AssemblyFailed", err.Error())
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	outPath := filepath.Join(s.cfg.DeckOutRoot, deckID+".pptx")
	if err := util.WriteFileAtomic(outPath, data); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	_ = s.deckRepo.MarkCompleted(r.Context(), deckID, outPath, served.Backend, served.Model)

	w.Header().Set("Content-Type", pptx.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", pptx.Filename(req.Topic)))
	_, _ = w.Write(data)
}

func (s *Server) writeGenerationError(w http.ResponseWriter, ctx context.Context, deckID string, err error) {
	var invalid *deck.InvalidRequestError
	if errors.As(err, &invalid) {
		_ = s.deckRepo.UpdateStatus(ctx, deckID, "failed", "InvalidRequest", invalid.Error())
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": invalid.Error(), "kind": "InvalidRequest"})
		return
	}
	var exhausted *providers.ExhaustedError
	if errors.As(err, &exhausted) {
		_ = s.deckRepo.UpdateStatus(ctx, deckID, "failed", "AllProvidersFailed", exhausted.Error())
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"error":   "model calls failed",
			"kind":    "AllProvidersFailed",
			"details": exhausted.Reasons(),
		})
		return
	}
	var unparseable *deck.UnparseableOutputError
	if errors.As(err, &unparseable) {
		_ = s.deckRepo.UpdateStatus(ctx, deckID, "failed", "UnparseableOutput", unparseable.Error())
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"error": "model did not return slides in expected format",
			"kind":  "UnparseableOutput",
			"raw":   util.TruncateRunes(unparseable.LastRaw, 500),
		})
		return
	}
	_ = s.deckRepo.UpdateStatus(ctx, deckID, "failed", "Internal", err.Error())
	writeErr(w, http.StatusInternalServerError, err)
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("parse multipart: %w", err))
		return
	}
	fh, ok := firstPDF(r.MultipartForm.File)
	if !ok {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("no pdf file provided"))
		return
	}
	sourceID, err := s.saveSource(fh)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"source_id": sourceID, "filename": filepath.Base(fh.Filename)})
}

func (s *Server) saveSource(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	sourceID := util.SHA256Hex(data)
	path := filepath.Join(s.cfg.SourceRoot, sourceID+".pdf")
	if err := util.WriteFileAtomic(path, data); err != nil {
		return "", err
	}
	return sourceID, nil
}

func firstPDF(m map[string][]*multipart.FileHeader) (*multipart.FileHeader, bool) {
	for _, v := range m {
		for _, fh := range v {
			if strings.HasSuffix(strings.ToLower(fh.Filename), ".pdf") {
				return fh, true
			}
		}
	}
	return nil, false
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]any{"error": err.Error()})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
