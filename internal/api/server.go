package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"go.uber.org/atomic"

	"emirps/internal/emirp"
)

const (
	defaultListRuns = 50
	maxListRuns     = 1000
)

// Options configures a Server.
type Options struct {
	// CacheSize is the number of summaries memoized by limit.
	CacheSize int
	// MaxLimit caps the limit a request may ask for.
	MaxLimit int64
	Logger   *slog.Logger
}

// Server implements ServerInterface on top of a shared emirp.Finder.
type Server struct {
	finder   *emirp.Finder
	db       *sql.DB
	memo     *lru.Cache[int64, emirp.Summary]
	maxLimit int64
	logger   *slog.Logger

	memoHits   atomic.Int64
	memoMisses atomic.Int64
}

// NewServer creates a new server backed by finder, recording runs in db.
func NewServer(finder *emirp.Finder, db *sql.DB, opts Options) (ServerInterface, error) {
	if opts.CacheSize < 1 {
		opts.CacheSize = 1
	}
	if opts.MaxLimit < 2 || opts.MaxLimit > emirp.MaxLimit {
		opts.MaxLimit = emirp.MaxLimit
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	memo, err := lru.New[int64, emirp.Summary](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create summary cache: %w", err)
	}

	return &Server{
		finder:   finder,
		db:       db,
		memo:     memo,
		maxLimit: opts.MaxLimit,
		logger:   opts.Logger,
	}, nil
}

// FindEmirps handles GET /emirps
func (s *Server) FindEmirps(w http.ResponseWriter, r *http.Request, params FindEmirpsParams) {
	if !s.checkLimit(w, params.Limit) {
		return
	}

	start := time.Now()
	summary, err := s.summary(params.Limit)
	if err != nil {
		s.writeFinderError(w, params.Limit, err)
		return
	}

	run := Run{
		Limit:     params.Limit,
		Summary:   summary,
		Elapsed:   time.Since(start),
		CreatedAt: time.Now().UTC(),
	}
	run.ID, err = SaveRun(s.db, run)
	if err != nil {
		s.logger.Error("failed to record run", "limit", params.Limit, "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to record run")
		return
	}

	s.logger.Info("emirps found",
		"run", run.ID, "limit", run.Limit, "count", summary.Count, "elapsed", run.Elapsed)
	writeJSON(w, http.StatusOK, toEmirpSummary(run))
}

// ListEmirps handles GET /emirps/list
func (s *Server) ListEmirps(w http.ResponseWriter, r *http.Request, params ListEmirpsParams) {
	if !s.checkLimit(w, params.Limit) {
		return
	}

	emirps, err := s.finder.Emirps(params.Limit)
	if err != nil {
		s.writeFinderError(w, params.Limit, err)
		return
	}
	if emirps == nil {
		emirps = []int64{}
	}

	writeJSON(w, http.StatusOK, emirps)
}

// ListRuns handles GET /runs
func (s *Server) ListRuns(w http.ResponseWriter, r *http.Request, params ListRunsParams) {
	n := defaultListRuns
	if params.Max != nil {
		n = min(max(*params.Max, 1), maxListRuns)
	}

	runs, err := ListRuns(s.db, n)
	if err != nil {
		s.logger.Error("failed to list runs", "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to list runs")
		return
	}

	resp := make([]EmirpSummary, 0, len(runs))
	for _, run := range runs {
		resp = append(resp, toEmirpSummary(run))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetRun handles GET /runs/{id}
func (s *Server) GetRun(w http.ResponseWriter, r *http.Request, id openapi_types.UUID) {
	run, err := GetRun(s.db, id)
	if err != nil {
		s.logger.Error("failed to get run", "run", id, "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to get run")
		return
	}
	if run == nil {
		writeError(w, http.StatusNotFound, "Run not found")
		return
	}

	writeJSON(w, http.StatusOK, toEmirpSummary(*run))
}

// GetStats handles GET /stats
func (s *Server) GetStats(w http.ResponseWriter, r *http.Request) {
	runs, err := CountRuns(s.db)
	if err != nil {
		s.logger.Error("failed to count runs", "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to count runs")
		return
	}

	cache := s.finder.Cache()
	writeJSON(w, http.StatusOK, Stats{
		CachedPrimes: cache.Len(),
		CacheCeiling: cache.Ceiling(),
		MemoHits:     s.memoHits.Load(),
		MemoMisses:   s.memoMisses.Load(),
		Runs:         runs,
	})
}

// summary returns the memoized summary for limit, computing it on a miss.
func (s *Server) summary(limit int64) (emirp.Summary, error) {
	if summary, ok := s.memo.Get(limit); ok {
		s.memoHits.Inc()
		return summary, nil
	}
	s.memoMisses.Inc()

	summary, err := s.finder.Find(limit)
	if err != nil {
		return emirp.Summary{}, err
	}
	s.memo.Add(limit, summary)
	return summary, nil
}

func (s *Server) checkLimit(w http.ResponseWriter, limit int64) bool {
	if limit < 2 {
		writeError(w, http.StatusBadRequest, "limit must be at least 2")
		return false
	}
	if limit > s.maxLimit {
		writeError(w, http.StatusUnprocessableEntity,
			fmt.Sprintf("limit %d exceeds the maximum of %d", limit, s.maxLimit))
		return false
	}
	return true
}

func (s *Server) writeFinderError(w http.ResponseWriter, limit int64, err error) {
	if errors.Is(err, emirp.ErrLimitOutOfRange) || errors.Is(err, emirp.ErrOverflow) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.logger.Error("emirp search failed", "limit", limit, "err", err)
	writeError(w, http.StatusInternalServerError, "Emirp search failed")
}

func toEmirpSummary(run Run) EmirpSummary {
	return EmirpSummary{
		Id:        run.ID,
		Limit:     run.Limit,
		Count:     run.Summary.Count,
		Max:       run.Summary.Max,
		Sum:       run.Summary.Sum,
		ElapsedMs: run.Elapsed.Milliseconds(),
		CreatedAt: run.CreatedAt,
	}
}

// JSONErrorHandler reports parameter binding errors as a JSON 400.
func JSONErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, http.StatusBadRequest, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, Error{Error: msg})
}
