package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	wsadapter "arcadekit/adapters/websocket"
	"arcadekit/core"
	"arcadekit/engine"
	"arcadekit/leaderboard"
	"arcadekit/realtime"
)

// Options configures the HTTP API surface.
type Options struct {
	// PathPrefix, if set, is prepended to all routes (e.g., "/api").
	PathPrefix string
	// AllowCORSOrigin, if non-empty, enables basic CORS with the given origin (use "*" for any).
	AllowCORSOrigin string
	// APIKeys, if non-empty, enables static API key auth via Authorization: Bearer or X-API-Key.
	APIKeys []string
	// RateLimitEnabled toggles rate limiting.
	RateLimitEnabled bool
	// RateLimitRPM is the allowed requests per minute per client key.
	RateLimitRPM int
	// RateLimitBurst defines burst capacity.
	RateLimitBurst int
	// LeaderboardLimit caps the number of rows a single request may ask for.
	LeaderboardLimit int
}

// NewMux builds an http.Handler exposing the platform REST API and WebSocket stream.
// Routes:
//   - POST {prefix}/users/{id}/scores?game=g1&value=500
//   - POST {prefix}/users/{id}/games?title=Maze
//   - POST {prefix}/users/{id}/credits?delta=5
//   - GET  {prefix}/users/{id}/achievements
//   - GET  {prefix}/users/{id}
//   - GET  {prefix}/leaderboard?limit=10
//   - GET  {prefix}/healthz
//   - WS   {prefix}/ws
func NewMux(svc *engine.Service, hub *realtime.Hub, board leaderboard.Board, opts Options) http.Handler {
	if opts.LeaderboardLimit <= 0 {
		opts.LeaderboardLimit = 100
	}
	mux := http.NewServeMux()

	// health
	mux.HandleFunc(withPrefix(opts.PathPrefix, "/healthz"), func(w http.ResponseWriter, r *http.Request) {
		healthCheck(w, r, svc)
	})

	// WebSocket events
	if hub != nil {
		mux.Handle(withPrefix(opts.PathPrefix, "/ws"), wsadapter.Handler(hub))
	}

	// Leaderboard
	mux.HandleFunc(withPrefix(opts.PathPrefix, "/leaderboard"), func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusNotFound, "not_found", "route not found", nil)
			return
		}
		if board == nil {
			writeJSON(w, map[string]any{"entries": []leaderboard.Entry{}})
			return
		}
		limit := 10
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer", nil)
				return
			}
			limit = n
		}
		if limit > opts.LeaderboardLimit {
			limit = opts.LeaderboardLimit
		}
		entries := board.TopN(limit)
		if entries == nil {
			entries = []leaderboard.Entry{}
		}
		writeJSON(w, map[string]any{"entries": entries, "total": board.Len()})
	})

	// Users API
	mux.HandleFunc(withPrefix(opts.PathPrefix, "/users/"), func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodPost {
			writeError(w, http.StatusNotFound, "not_found", "route not found", nil)
			return
		}
		path := strings.TrimPrefix(r.URL.Path, opts.PathPrefix)
		if path == "" || path[0] != '/' {
			path = "/" + path
		}
		parts := split(path, '/')
		if len(parts) < 2 {
			writeError(w, http.StatusNotFound, "not_found", "route not found", nil)
			return
		}
		user, err := core.NormalizeUserID(core.UserID(parts[1]))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_user", err.Error(), nil)
			return
		}
		switch r.Method {
		case http.MethodPost:
			if len(parts) >= 3 && parts[2] == "scores" {
				game := core.GameID(r.URL.Query().Get("game"))
				value, err := strconv.ParseInt(r.URL.Query().Get("value"), 10, 64)
				if err != nil {
					writeError(w, http.StatusBadRequest, "invalid_value", "value must be an integer", nil)
					return
				}
				score, changed, err := svc.SubmitScore(r.Context(), user, game, value)
				if err != nil {
					writeError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
					return
				}
				writeJSON(w, map[string]any{"score": score, "achievements": changed})
				return
			}
			if len(parts) >= 3 && parts[2] == "games" {
				title := r.URL.Query().Get("title")
				if strings.TrimSpace(title) == "" {
					writeError(w, http.StatusBadRequest, "invalid_title", "title is required", nil)
					return
				}
				game, changed, err := svc.CreateGame(r.Context(), user, title)
				if err != nil {
					writeError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
					return
				}
				writeJSON(w, map[string]any{"game": game, "achievements": changed})
				return
			}
			if len(parts) >= 3 && parts[2] == "credits" {
				delta, err := strconv.ParseInt(r.URL.Query().Get("delta"), 10, 64)
				if err != nil {
					writeError(w, http.StatusBadRequest, "invalid_delta", "delta must be an integer", nil)
					return
				}
				total, changed, err := svc.AddCredits(r.Context(), user, delta)
				if err != nil {
					writeError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
					return
				}
				writeJSON(w, map[string]any{"credits": total, "achievements": changed})
				return
			}
		case http.MethodGet:
			if len(parts) >= 3 && parts[2] == "achievements" {
				achievements, err := svc.Achievements(r.Context(), user)
				if err != nil {
					writeError(w, http.StatusInternalServerError, "internal", err.Error(), nil)
					return
				}
				if achievements == nil {
					achievements = []core.Achievement{}
				}
				writeJSON(w, map[string]any{"achievements": achievements})
				return
			}
			profile, err := svc.Profile(r.Context(), user)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "internal", err.Error(), nil)
				return
			}
			writeJSON(w, profile)
			return
		}
		writeError(w, http.StatusNotFound, "not_found", "route not found", nil)
	})

	var handler http.Handler = mux
	if opts.AllowCORSOrigin != "" {
		handler = withCORS(handler, opts.AllowCORSOrigin)
	}
	if len(opts.APIKeys) > 0 {
		handler = withAPIKeyAuth(handler, opts.APIKeys)
	}
	if opts.RateLimitEnabled && opts.RateLimitRPM > 0 && opts.RateLimitBurst > 0 {
		handler = withRateLimit(handler, opts.RateLimitRPM, opts.RateLimitBurst)
	}
	return handler
}

// healthCheck verifies the service is working properly
func healthCheck(w http.ResponseWriter, r *http.Request, svc *engine.Service) {
	ctx := r.Context()

	// Verify storage works by trying to fetch a dummy user
	// This is a safe, lightweight check that doesn't affect real data
	_, err := svc.Achievements(ctx, core.UserID("healthcheck_probe"))

	status := map[string]any{
		"status": "healthy",
		"checks": map[string]any{
			"storage": "ok",
		},
	}

	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		status["status"] = "unhealthy"
		status["checks"].(map[string]any)["storage"] = "failed"
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	_ = json.NewEncoder(w).Encode(status)
}

func withPrefix(prefix, path string) string {
	if prefix == "" || prefix == "/" {
		return path
	}
	if prefix[len(prefix)-1] == '/' {
		return prefix[:len(prefix)-1] + path
	}
	return prefix + path
}

func split(p string, sep rune) []string {
	var parts []string
	cur := make([]rune, 0, len(p))
	// trim leading '/'
	for len(p) > 0 && p[0] == '/' {
		p = p[1:]
	}
	for _, r := range p {
		if r == sep {
			if len(cur) > 0 {
				parts = append(parts, string(cur))
				cur = cur[:0]
			}
			continue
		}
		cur = append(cur, r)
	}
	if len(cur) > 0 {
		parts = append(parts, string(cur))
	}
	return parts
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, msg string, details any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiError{Code: code, Message: msg, Details: details})
}
