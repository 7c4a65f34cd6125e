package users

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"pet-adoption-economy/internal/middleware"
	"pet-adoption-economy/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes monta /auth. issuer puede ser nil (modo dev con X-Debug-User-ID):
// en ese caso login/register no devuelven token.
func RegisterRoutes(r chi.Router, svc *Service, issuer auth.TokenIssuer) {
	r.Route("/auth", func(ar chi.Router) {
		ar.Post("/register", registerHandler(svc, issuer))
		ar.Post("/login", loginHandler(svc, issuer))
		ar.Get("/me", meHandler(svc))
	})
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type InventoryResponse struct {
	Food  int `json:"food"`
	Toy   int `json:"toy"`
	Treat int `json:"treat"`
}

// UserResponse es la vista pública de un usuario (sin passwordHash).
type UserResponse struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	Role        Role              `json:"role"`
	Budget      int               `json:"budget"`
	Inventory   InventoryResponse `json:"inventory"`
	AdoptedPets []int64           `json:"adoptedPets"`
}

type sessionResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token,omitempty"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
}

// registerHandler godoc
// @Summary Register
// @Tags auth
// @Accept json
// @Produce json
// @Param body body registerRequest true "New account"
// @Success 201 {object} sessionResponse
// @Failure 400 {string} string "invalid input"
// @Failure 409 {string} string "email already registered"
// @Router /auth/register [post]
func registerHandler(svc *Service, issuer auth.TokenIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		u, err := svc.Register(r.Context(), RegisterInput{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrEmailTaken):
				http.Error(w, err.Error(), http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeSession(w, r, http.StatusCreated, u, issuer)
	}
}

// loginHandler godoc
// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param body body loginRequest true "Credentials"
// @Success 200 {object} sessionResponse
// @Failure 401 {string} string "invalid email or password"
// @Router /auth/login [post]
func loginHandler(svc *Service, issuer auth.TokenIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		u, err := svc.Authenticate(r.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, ErrInvalidCredentials) {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeSession(w, r, http.StatusOK, u, issuer)
	}
}

// meHandler godoc
// @Summary Current user
// @Tags auth
// @Produce json
// @Success 200 {object} UserResponse
// @Failure 401 {string} string "unauthorized"
// @Router /auth/me [get]
func meHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || claims.UserID <= 0 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		u, err := svc.GetByID(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, ToResponse(u))
	}
}

func writeSession(w http.ResponseWriter, r *http.Request, status int, u User, issuer auth.TokenIssuer) {
	out := sessionResponse{User: ToResponse(u)}
	if issuer != nil {
		token, exp, err := issuer.Issue(r.Context(), auth.Claims{UserID: u.ID, Email: u.Email, Role: string(u.Role)})
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		out.Token = token
		out.ExpiresAt = &exp
	}
	writeJSON(w, status, out)
}

func ToResponse(u User) UserResponse {
	adopted := make([]int64, len(u.AdoptedPets))
	copy(adopted, u.AdoptedPets)
	return UserResponse{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
		Budget: u.Budget,
		Inventory: InventoryResponse{
			Food:  u.Inventory.Food,
			Toy:   u.Inventory.Toy,
			Treat: u.Inventory.Treat,
		},
		AdoptedPets: adopted,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
