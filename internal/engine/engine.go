// Package engine wires the scheme corpus, indexes, sessions, and generation
// into the query surface: recommend, chat, and status.
package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/margdarshak/schemeseek/internal/corpus"
	"github.com/margdarshak/schemeseek/internal/eligibility"
	"github.com/margdarshak/schemeseek/internal/embedding"
	"github.com/margdarshak/schemeseek/internal/generation"
	"github.com/margdarshak/schemeseek/internal/keyword"
	"github.com/margdarshak/schemeseek/internal/models"
	"github.com/margdarshak/schemeseek/internal/normalize"
	"github.com/margdarshak/schemeseek/internal/prompt"
	"github.com/margdarshak/schemeseek/internal/retrieval"
	"github.com/margdarshak/schemeseek/internal/session"
	"github.com/margdarshak/schemeseek/internal/vector"
	"go.uber.org/zap"
)

// Options holds engine tunables.
type Options struct {
	// ChatTopK is the number of schemes retrieved per chat turn.
	ChatTopK int
	// CorpusPaths are candidate locations for the raw records file.
	CorpusPaths []string
}

// snapshot is one immutable build of the corpus and its indexes. Queries read
// whichever snapshot is current; Reload swaps in a fresh one atomically.
// Snapshots are reference-counted: the engine's state pointer holds one
// reference and every in-flight query holds another, so a reload never closes
// the keyword index out from under a reader.
type snapshot struct {
	schemes      []*models.SchemeProfile
	byID         map[string]*models.SchemeProfile
	dropped      int
	orchestrator *retrieval.Orchestrator
	keyword      *keyword.Index

	refs      atomic.Int32
	closeOnce sync.Once
}

// release drops one reference, closing the keyword index when the last
// reference goes.
func (s *snapshot) release() {
	if s.refs.Add(-1) > 0 {
		return
	}
	s.closeOnce.Do(func() {
		if s.keyword != nil {
			_ = s.keyword.Close()
		}
	})
}

// Engine owns the corpus snapshot, embedder, session store, and generation
// client. Construct with New, then call LoadCorpus once before serving.
type Engine struct {
	opts      Options
	embedder  embedding.Embedder
	generator generation.Generator
	sessions  *session.Store
	logger    *zap.Logger

	state atomic.Pointer[snapshot]
}

// New creates an engine. generator may be nil when no generation service is
// configured; chat then fails with an upstream error while recommend and
// status keep working.
func New(opts Options, embedder embedding.Embedder, generator generation.Generator, sessions *session.Store, logger *zap.Logger) *Engine {
	if opts.ChatTopK <= 0 {
		opts.ChatTopK = 5
	}
	if len(opts.CorpusPaths) == 0 {
		opts.CorpusPaths = corpus.DefaultCandidatePaths
	}
	return &Engine{
		opts:      opts,
		embedder:  embedder,
		generator: generator,
		sessions:  sessions,
		logger:    logger,
	}
}

// LoadCorpus resolves the corpus file, normalizes it, and builds the indexes.
// A missing file is a soft failure: the engine becomes ready with an empty
// corpus and status reports zero schemes. An embedding failure leaves the
// engine not ready; every query then fails fast with ErrIndexNotReady.
func (e *Engine) LoadCorpus(ctx context.Context) error {
	if e.embedder == nil {
		return fmt.Errorf("%w: no embedding service configured", ErrIndexNotReady)
	}
	path, err := corpus.Resolve(e.opts.CorpusPaths)
	if err != nil {
		e.logger.Warn("corpus file not found, starting with empty corpus", zap.Error(err))
		return e.buildState(ctx, nil)
	}

	records, err := corpus.Load(path)
	if err != nil {
		e.logger.Warn("corpus file unreadable, starting with empty corpus",
			zap.String("path", path), zap.Error(err))
		return e.buildState(ctx, nil)
	}
	e.logger.Info("loaded raw scheme records", zap.String("path", path), zap.Int("records", len(records)))
	return e.buildState(ctx, records)
}

// Reload rebuilds the corpus snapshot from disk and swaps it in atomically.
// Used by the corpus file watcher and the reload endpoint.
func (e *Engine) Reload(ctx context.Context) error {
	return e.LoadCorpus(ctx)
}

// CorpusPath returns the currently resolvable corpus file path, if any.
func (e *Engine) CorpusPath() (string, error) {
	return corpus.Resolve(e.opts.CorpusPaths)
}

func (e *Engine) buildState(ctx context.Context, records []normalize.RawRecord) error {
	res := normalize.NormalizeAll(records)
	if res.Dropped > 0 {
		e.logger.Warn("dropped unparseable scheme records", zap.Int("dropped", res.Dropped))
	}

	summaries := make([]string, len(res.Schemes))
	for i, s := range res.Schemes {
		summaries[i] = s.SemanticSummary
	}

	var vectors [][]float32
	if len(summaries) > 0 {
		var err error
		vectors, err = e.embedder.EmbedBatch(ctx, summaries)
		if err != nil {
			return fmt.Errorf("embed corpus: %w", err)
		}
	}

	index, err := vector.NewFlatIndex(e.embedder.Dimensions())
	if err != nil {
		return err
	}
	if err := index.Add(ctx, vectors); err != nil {
		return fmt.Errorf("build vector index: %w", err)
	}

	kw, err := keyword.NewIndex()
	if err != nil {
		return err
	}
	if err := kw.IndexSchemes(ctx, res.Schemes); err != nil {
		kw.Close()
		return fmt.Errorf("build keyword index: %w", err)
	}

	byID := make(map[string]*models.SchemeProfile, len(res.Schemes))
	for _, s := range res.Schemes {
		byID[s.SchemeID] = s
	}

	snap := &snapshot{
		schemes:      res.Schemes,
		byID:         byID,
		dropped:      res.Dropped,
		orchestrator: retrieval.New(res.Schemes, vectors, index, e.embedder),
		keyword:      kw,
	}
	snap.refs.Store(1)
	if old := e.state.Swap(snap); old != nil {
		old.release()
	}
	e.logger.Info("scheme corpus ready", zap.Int("schemes", len(res.Schemes)), zap.Int("dropped", res.Dropped))
	return nil
}

// current returns the live snapshot with one reference held, or
// ErrIndexNotReady before the first successful build. Callers must release()
// the snapshot when done. The re-check after the increment closes the window
// where a concurrent swap released the snapshot between the load and the
// acquire.
func (e *Engine) current() (*snapshot, error) {
	for {
		st := e.state.Load()
		if st == nil {
			return nil, ErrIndexNotReady
		}
		st.refs.Add(1)
		if e.state.Load() == st {
			return st, nil
		}
		st.release()
	}
}

// Recommend filters the whole corpus by eligibility and ranks the eligible
// set against the profile. Zero eligible schemes yields a "no matches" result
// with count 0, never an error.
func (e *Engine) Recommend(ctx context.Context, req *models.RecommendRequest) (*models.RecommendResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedQuery, err)
	}
	st, err := e.current()
	if err != nil {
		return nil, err
	}
	defer st.release()

	rec, err := st.orchestrator.Recommend(ctx, &req.Profile, req.Limit)
	if err != nil {
		return nil, err
	}
	if rec.EligibleCount == 0 {
		return &models.RecommendResponse{
			EligibleCount: 0,
			TopSchemes:    []*models.SchemeProfile{},
			Report:        prompt.NoMatchMessage,
		}, nil
	}
	return &models.RecommendResponse{
		EligibleCount: rec.EligibleCount,
		TopSchemes:    rec.Top,
		Report:        prompt.RenderRecommendationReport(rec.EligibleCount, rec.Top),
	}, nil
}

// Chat runs one conversational turn: update session state from the request,
// retrieve relevant schemes, call the generation service, and append the
// exchange to the session history.
func (e *Engine) Chat(ctx context.Context, req *models.ChatRequest) (*models.ChatResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedQuery, err)
	}
	st, err := e.current()
	if err != nil {
		return nil, err
	}
	defer st.release()
	if e.generator == nil {
		return nil, fmt.Errorf("%w: no generation service configured", generation.ErrUpstream)
	}

	sess := e.sessions.GetOrCreate(req.UserID)
	if req.Profile != nil {
		eligible := eligibility.FilterEligible(st.schemes, req.Profile)
		ids := make([]string, len(eligible))
		for i, s := range eligible {
			ids[i] = s.SchemeID
		}
		sess.SetProfile(req.Profile, ids)
	}

	profile := sess.Profile()
	schemes, outcome, err := st.orchestrator.Retrieve(ctx, req.Message, profile, e.opts.ChatTopK)
	if err != nil {
		return nil, err
	}

	// Caller-supplied history overrides the stored session history for the
	// prompt only; the session keeps its own record.
	history := req.History
	if history == nil {
		history = sess.History()
	}

	userPrompt := prompt.BuildChatPrompt(schemes, history, profile, req.Message)
	response, err := e.generator.Generate(ctx, prompt.SystemInstruction, userPrompt)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(schemes))
	for i, s := range schemes {
		names[i] = s.Name
	}
	sess.AppendTurn(models.HistoryTurn{
		UserMessage:       req.Message,
		AssistantResponse: response,
		ReferencedSchemes: names,
	})

	return &models.ChatResponse{
		Response:          response,
		ReferencedSchemes: names,
		EligibleCount:     sess.EligibleCount(),
		Fallback:          outcome == retrieval.OutcomeUnfilteredFallback,
	}, nil
}

// SchemeHit pairs a scheme with its keyword search score.
type SchemeHit struct {
	Scheme *models.SchemeProfile `json:"scheme"`
	Score  float64               `json:"score"`
}

// SearchSchemes runs keyword search over scheme names, details, and tags.
func (e *Engine) SearchSchemes(ctx context.Context, query string, limit int) ([]SchemeHit, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: query cannot be empty", ErrMalformedQuery)
	}
	st, err := e.current()
	if err != nil {
		return nil, err
	}
	defer st.release()
	hits, err := st.keyword.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	out := make([]SchemeHit, 0, len(hits))
	for _, h := range hits {
		if s, ok := st.byID[h.SchemeID]; ok {
			out = append(out, SchemeHit{Scheme: s, Score: h.Score})
		}
	}
	return out, nil
}

// GetScheme returns a scheme by ID. Before the first corpus build it fails
// with ErrIndexNotReady like every other query; an unknown ID fails with
// ErrSchemeNotFound.
func (e *Engine) GetScheme(id string) (*models.SchemeProfile, error) {
	st, err := e.current()
	if err != nil {
		return nil, err
	}
	defer st.release()
	s, ok := st.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSchemeNotFound, id)
	}
	return s, nil
}

// Status reports corpus and session state. Safe to call before the index is
// built; index_ready is false then.
func (e *Engine) Status() models.StatusResponse {
	resp := models.StatusResponse{
		ActiveSessions:       e.sessions.Count(),
		GenerationConfigured: e.generator != nil,
	}
	if st := e.state.Load(); st != nil {
		resp.SchemesLoaded = len(st.schemes)
		resp.SchemesDropped = st.dropped
		resp.IndexReady = true
	}
	return resp
}
