package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"bridgebench/server/engine"
	"bridgebench/server/record"
	"bridgebench/server/replay"
	"bridgebench/server/store"
)

// runStore is the part of the database the API reads. A nil runStore
// disables the run endpoints.
type runStore interface {
	Ping(ctx context.Context) error
	LatestRun(ctx context.Context) (store.Run, error)
	GetRun(ctx context.Context, id uuid.UUID) (store.Run, error)
	RunBoards(ctx context.Context, id uuid.UUID, onlyFailed bool) ([]store.BoardRow, error)
}

const maxReplayBody = 16 << 20

func Router(db runStore, workers int) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		status := "disabled"
		if db != nil {
			ctx, cancel := withTimeout(r.Context(), 2*time.Second)
			defer cancel()
			status = "up"
			if err := db.Ping(ctx); err != nil {
				status = "down"
			}
		}
		writeJSON(w, map[string]any{"ok": true, "db": status})
	})

	r.Post("/api/score", handleScore)
	r.Get("/api/deal", handleDeal)

	r.Post("/api/replay", func(w http.ResponseWriter, r *http.Request) {
		boards, err := record.Decode(http.MaxBytesReader(w, r.Body, maxReplayBody))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if len(boards) == 0 {
			http.Error(w, "no boards in body", http.StatusBadRequest)
			return
		}
		rep, err := replay.RunBoards(r.Context(), boards, workers, false)
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, map[string]any{
			"boards":      rep.Stats.Boards,
			"passed":      rep.Stats.Passed,
			"failed":      rep.Stats.Failures(),
			"error_kinds": rep.Stats.Kinds,
			"outcomes":    rep.Outcomes,
		})
	})

	r.Route("/api/runs", func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if db == nil {
					http.Error(w, "database not configured", http.StatusServiceUnavailable)
					return
				}
				next.ServeHTTP(w, r)
			})
		})

		r.Get("/latest", func(w http.ResponseWriter, r *http.Request) {
			run, err := db.LatestRun(r.Context())
			if err != nil {
				storeError(w, err, "no runs yet")
				return
			}
			writeJSON(w, run)
		})

		r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, err := uuid.Parse(chi.URLParam(r, "id"))
			if err != nil {
				http.Error(w, "bad run id", http.StatusBadRequest)
				return
			}
			run, err := db.GetRun(r.Context(), id)
			if err != nil {
				storeError(w, err, "run not found")
				return
			}
			writeJSON(w, run)
		})

		r.Get("/{id}/boards", func(w http.ResponseWriter, r *http.Request) {
			id, err := uuid.Parse(chi.URLParam(r, "id"))
			if err != nil {
				http.Error(w, "bad run id", http.StatusBadRequest)
				return
			}
			onlyFailed := asBool(r.URL.Query().Get("failed"))
			rows, err := db.RunBoards(r.Context(), id, onlyFailed)
			if err != nil {
				storeError(w, err, "run not found")
				return
			}
			writeJSON(w, rows)
		})
	})

	return r
}

type scoreRequest struct {
	Contract   string               `json:"contract"`
	Declarer   *engine.Seat         `json:"declarer"`
	Tricks     *int                 `json:"tricks"`
	Vulnerable engine.Vulnerability `json:"vulnerable"`
}

type scoreResponse struct {
	Contract string      `json:"contract"`
	Score    string      `json:"score"`
	Side     engine.Side `json:"side"`
	Points   int         `json:"points"`
	Relative int         `json:"relative"`
}

func handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
		return
	}
	c, err := engine.ParseContract(req.Contract)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Tricks == nil || *req.Tricks < 0 || *req.Tricks > 13 {
		http.Error(w, "tricks must be 0..13", http.StatusBadRequest)
		return
	}
	declarer := engine.North
	switch {
	case req.Declarer != nil:
		declarer = *req.Declarer
	case !c.PassedOut():
		http.Error(w, "declarer required", http.StatusBadRequest)
		return
	}
	res := engine.Score(c, declarer, *req.Tricks, req.Vulnerable)
	side := engine.ReferenceSide
	if res.HasWinner {
		side = res.Winner
	}
	writeJSON(w, scoreResponse{
		Contract: c.String(),
		Score:    res.String(),
		Side:     side,
		Points:   res.Points,
		Relative: res.Relative(),
	})
}

func handleDeal(w http.ResponseWriter, r *http.Request) {
	seed := int64(atoiDef(r.URL.Query().Get("seed"), 0))
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	deal := engine.RandomDeal(engine.NewRand(seed))
	hands := map[engine.Seat][]engine.Card{}
	for _, dc := range deal.Cards {
		hands[dc.Seat] = append(hands[dc.Seat], dc.Card)
	}
	for _, h := range hands {
		sort.Slice(h, func(i, j int) bool {
			if h[i].Suit != h[j].Suit {
				return h[i].Suit > h[j].Suit
			}
			return h[i].Rank > h[j].Rank
		})
	}
	writeJSON(w, map[string]any{"seed": strconv.FormatInt(seed, 10), "hands": hands})
}

func storeError(w http.ResponseWriter, err error, missing string) {
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, missing, http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d)
}
