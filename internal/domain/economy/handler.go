package economy

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"pet-adoption-economy/internal/domain/pets"
	"pet-adoption-economy/internal/domain/users"
	"pet-adoption-economy/internal/middleware"
	"pet-adoption-economy/internal/platform/logger"
	"pet-adoption-economy/internal/ports/recordstore"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes monta las operaciones de economía. Todas exigen usuario autenticado.
func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	if log == nil {
		log = logger.Nop()
	}
	r.Post("/pets/reset", resetHandler(svc, log))
	r.Post("/pets/{petID}/adopt", adoptHandler(svc, log))
	r.Post("/pets/{petID}/actions", petActionHandler(svc, log))
	r.Post("/pets/{petID}/return", returnHandler(svc, log))
	r.Post("/actions", actionsHandler(svc, log))
	r.Get("/shop", shopHandler())
	r.Post("/shop/buy", buyHandler(svc, log))
}

type petActionRequest struct {
	Action       string `json:"action"`
	UseInventory bool   `json:"useInventory"`
}

type actionRequest struct {
	PetID        int64  `json:"petId"`
	Action       string `json:"action"`
	UseInventory bool   `json:"useInventory"`
}

type buyRequest struct {
	Item string `json:"item"`
}

type ItemResponse struct {
	Item        users.ItemKind `json:"item"`
	Price       int            `json:"price"`
	Description string         `json:"description"`
}

type ResultResponse struct {
	Message string             `json:"message"`
	User    users.UserResponse `json:"user"`
	Pet     *pets.PetResponse  `json:"pet,omitempty"`
}

// adoptHandler godoc
// @Summary Adopt pet
// @Tags economy
// @Produce json
// @Param petID path int true "Pet ID"
// @Success 200 {object} ResultResponse
// @Failure 400 {string} string "pet already adopted"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "pet not found"
// @Router /pets/{petID}/adopt [post]
func adoptHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r)
		if !ok {
			return
		}
		petID, err := pets.ParseID(chi.URLParam(r, "petID"))
		if err != nil {
			http.Error(w, "pet not found", http.StatusNotFound)
			return
		}

		res, err := svc.Adopt(r.Context(), userID, petID)
		respond(w, r, log, res, err)
	}
}

// petActionHandler godoc
// @Summary Care action on an adopted pet
// @Tags economy
// @Accept json
// @Produce json
// @Param petID path int true "Pet ID"
// @Param body body petActionRequest true "feed, play, treat or return"
// @Success 200 {object} ResultResponse
// @Failure 400 {string} string "insufficient funds"
// @Failure 403 {string} string "pet is not adopted by this user"
// @Failure 404 {string} string "pet not found"
// @Router /pets/{petID}/actions [post]
func petActionHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r)
		if !ok {
			return
		}
		petID, err := pets.ParseID(chi.URLParam(r, "petID"))
		if err != nil {
			http.Error(w, "pet not found", http.StatusNotFound)
			return
		}

		var req petActionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		res, err := svc.Apply(r.Context(), userID, petID, strings.ToLower(strings.TrimSpace(req.Action)), req.UseInventory)
		respond(w, r, log, res, err)
	}
}

// returnHandler godoc
// @Summary Return pet to the shelter
// @Tags economy
// @Produce json
// @Param petID path int true "Pet ID"
// @Success 200 {object} ResultResponse
// @Failure 400 {string} string "insufficient funds"
// @Failure 403 {string} string "pet is not adopted by this user"
// @Failure 404 {string} string "pet not found"
// @Router /pets/{petID}/return [post]
func returnHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r)
		if !ok {
			return
		}
		petID, err := pets.ParseID(chi.URLParam(r, "petID"))
		if err != nil {
			http.Error(w, "pet not found", http.StatusNotFound)
			return
		}

		res, err := svc.Return(r.Context(), userID, petID)
		respond(w, r, log, res, err)
	}
}

// actionsHandler godoc
// @Summary Care action (generic)
// @Tags economy
// @Accept json
// @Produce json
// @Param body body actionRequest true "Action"
// @Success 200 {object} ResultResponse
// @Failure 400 {string} string "unknown action"
// @Failure 403 {string} string "pet is not adopted by this user"
// @Failure 404 {string} string "pet not found"
// @Router /actions [post]
func actionsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r)
		if !ok {
			return
		}

		var req actionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.PetID <= 0 {
			http.Error(w, "petId required", http.StatusBadRequest)
			return
		}

		res, err := svc.Apply(r.Context(), userID, req.PetID, strings.ToLower(strings.TrimSpace(req.Action)), req.UseInventory)
		respond(w, r, log, res, err)
	}
}

// shopHandler godoc
// @Summary Shop catalog
// @Tags shop
// @Produce json
// @Success 200 {array} ItemResponse
// @Router /shop [get]
func shopHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items := Catalog()
		out := make([]ItemResponse, 0, len(items))
		for _, it := range items {
			out = append(out, ItemResponse{Item: it.Kind, Price: it.Price, Description: it.Description})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// buyHandler godoc
// @Summary Buy an item
// @Tags shop
// @Accept json
// @Produce json
// @Param body body buyRequest true "food, toy or treat"
// @Success 200 {object} ResultResponse
// @Failure 400 {string} string "insufficient funds"
// @Failure 401 {string} string "unauthorized"
// @Router /shop/buy [post]
func buyHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r)
		if !ok {
			return
		}

		var req buyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		item := users.ItemKind(strings.ToLower(strings.TrimSpace(req.Item)))
		res, err := svc.Purchase(r.Context(), userID, item)
		respond(w, r, log, res, err)
	}
}

// resetHandler godoc
// @Summary Reset all adoptions (admin)
// @Tags pets
// @Produce json
// @Success 200 {object} ResultResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /pets/reset [post]
func resetHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r)
		if !ok {
			return
		}
		if claims, _ := middleware.GetClaims(r.Context()); !claims.IsAdmin() {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		res, err := svc.ResetAdoptions(r.Context(), userID)
		respond(w, r, log, res, err)
	}
}

func callerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || claims.UserID <= 0 {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return 0, false
	}
	return claims.UserID, true
}

func respond(w http.ResponseWriter, r *http.Request, log logger.Logger, res Result, err error) {
	if err != nil {
		status, msg := statusFor(err)
		if status >= http.StatusInternalServerError {
			log.Error("economy operation failed", map[string]any{
				"path": r.URL.Path,
				"err":  err,
			})
		}
		http.Error(w, msg, status)
		return
	}

	out := ResultResponse{Message: res.Message, User: users.ToResponse(res.User)}
	if res.Pet != nil {
		p := pets.ToResponse(*res.Pet)
		out.Pet = &p
	}
	writeJSON(w, http.StatusOK, out)
}

// statusFor traduce errores de dominio a status HTTP. Los errores de store
// no exponen detalle al cliente.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, pets.ErrNotFound):
		return http.StatusNotFound, "pet not found"
	case errors.Is(err, users.ErrNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, ErrNotAdoptedByUser):
		return http.StatusForbidden, ErrNotAdoptedByUser.Error()
	case errors.Is(err, pets.ErrAlreadyAdopted),
		errors.Is(err, users.ErrInsufficientFunds),
		errors.Is(err, users.ErrEmptyInventory),
		errors.Is(err, users.ErrUnknownItem),
		errors.Is(err, ErrUnknownAction):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, recordstore.ErrConflict):
		return http.StatusConflict, "concurrent update, try again"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
