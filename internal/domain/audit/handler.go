package audit

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pet-adoption-economy/internal/middleware"

	"github.com/go-chi/chi/v5"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/audit", listEntriesHandler(svc))
}

type EntryResponse struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	UserID    int64          `json:"userId"`
	PetID     int64          `json:"petId,omitempty"`
	Action    Action         `json:"action"`
	Details   map[string]any `json:"details"`
}

// listEntriesHandler godoc
// @Summary Audit history
// @Description Admins ven todo (opcionalmente filtrado por userId); el resto sólo lo propio.
// @Tags audit
// @Produce json
// @Param userId query int false "User filter (admin only)"
// @Param limit query int false "Max entries (default 50, max 500)"
// @Success 200 {array} EntryResponse
// @Failure 401 {string} string "unauthorized"
// @Router /audit [get]
func listEntriesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || claims.UserID <= 0 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		q := r.URL.Query()
		f := Filter{UserID: claims.UserID, Limit: defaultLimit}
		if claims.IsAdmin() {
			f.UserID = 0
			if v := strings.TrimSpace(q.Get("userId")); v != "" {
				id, err := strconv.ParseInt(v, 10, 64)
				if err != nil || id <= 0 {
					http.Error(w, "userId must be a positive integer", http.StatusBadRequest)
					return
				}
				f.UserID = id
			}
		}
		if v := strings.TrimSpace(q.Get("limit")); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
				return
			}
			f.Limit = min(n, maxLimit)
		}

		entries, err := svc.List(r.Context(), f)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]EntryResponse, 0, len(entries))
		for _, e := range entries {
			out = append(out, EntryResponse{
				ID:        e.ID,
				Timestamp: e.Timestamp,
				UserID:    e.UserID,
				PetID:     e.PetID,
				Action:    e.Action,
				Details:   e.Details,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
