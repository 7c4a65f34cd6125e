package pets

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"pet-adoption-economy/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes monta el catálogo. Las acciones sobre mascotas adoptadas
// (/pets/{petID}/adopt, /actions, /return) las registra el paquete economy.
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/pets", listPetsHandler(svc))
	r.Post("/pets", createPetHandler(svc))
	r.Get("/pets/{petID}", getPetHandler(svc))
}

type createPetRequest struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Breed       string `json:"breed"`
	Age         int    `json:"age"`
	Gender      string `json:"gender"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

type PetResponse struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Type        Category `json:"type"`
	Breed       string   `json:"breed"`
	Age         int      `json:"age"`
	Gender      string   `json:"gender"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	Adopted     bool     `json:"adopted"`
	AdoptedBy   *int64   `json:"adoptedBy,omitempty"`
	Hunger      int      `json:"hunger"`
	Happiness   int      `json:"happiness"`
}

// listPetsHandler godoc
// @Summary List pets
// @Tags pets
// @Produce json
// @Param type query string false "Category filter (puppy, kitten, other)"
// @Success 200 {array} PetResponse
// @Failure 400 {string} string "unknown type"
// @Router /pets [get]
func listPetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category := Category(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("type"))))
		if category != "" && !category.Valid() {
			http.Error(w, "unknown type", http.StatusBadRequest)
			return
		}

		items, err := svc.List(r.Context(), category)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]PetResponse, 0, len(items))
		for _, p := range items {
			out = append(out, ToResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// createPetHandler godoc
// @Summary Create pet (admin)
// @Tags pets
// @Accept json
// @Produce json
// @Param body body createPetRequest true "Pet"
// @Success 201 {object} PetResponse
// @Failure 400 {string} string "invalid input"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /pets [post]
func createPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || claims.UserID <= 0 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !claims.IsAdmin() {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req createPetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.Create(r.Context(), CreateInput{
			Name:        req.Name,
			Category:    Category(strings.ToLower(strings.TrimSpace(req.Type))),
			Breed:       req.Breed,
			Age:         req.Age,
			Gender:      req.Gender,
			Description: req.Description,
			Image:       req.Image,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, ToResponse(p))
	}
}

// getPetHandler godoc
// @Summary Get pet
// @Tags pets
// @Produce json
// @Param petID path int true "Pet ID"
// @Success 200 {object} PetResponse
// @Failure 404 {string} string "pet not found"
// @Router /pets/{petID} [get]
func getPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		petID, err := ParseID(chi.URLParam(r, "petID"))
		if err != nil {
			http.Error(w, "pet not found", http.StatusNotFound)
			return
		}

		p, err := svc.GetByID(r.Context(), petID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "pet not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, ToResponse(p))
	}
}

// ParseID acepta sólo ids enteros positivos.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrNotFound
	}
	return id, nil
}

func ToResponse(p Pet) PetResponse {
	return PetResponse{
		ID:          p.ID,
		Name:        p.Name,
		Type:        p.Category,
		Breed:       p.Breed,
		Age:         p.Age,
		Gender:      p.Gender,
		Description: p.Description,
		Image:       p.Image,
		Adopted:     p.Adopted,
		AdoptedBy:   p.AdoptedBy,
		Hunger:      p.Hunger,
		Happiness:   p.Happiness,
	}
}

// writeJSON está duplicado en handlers de distintos módulos (pets/users/economy/audit).
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
