// internal/cats/handlers.go
package cats

import (
	"encoding/json"
	"errors"
	"net/http"

	"catshelter/internal/authz"
	"catshelter/internal/observability/logging"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Handler names, used both for route registration and as the keys the rule
// registry resolves against.
const (
	Controller     = "cats"
	HandlerList    = "cats.list"
	HandlerGet     = "cats.get"
	HandlerCreate  = "cats.create"
	HandlerUpdate  = "cats.update"
	HandlerDelete  = "cats.delete"
	HandlerAdopted = "cats.adopted"
)

// Handler serves the cats HTTP API. Reads go through the cached repository,
// writes through the direct one.
type Handler struct {
	reads  Reader
	writes Repository
	orgs   authz.OrgResolver
	logger *logging.Logger
}

// NewHandler creates the cats HTTP handler.
func NewHandler(reads Reader, writes Repository, orgs authz.OrgResolver, logger *logging.Logger) *Handler {
	return &Handler{
		reads:  reads,
		writes: writes,
		orgs:   orgs,
		logger: logger.WithModule("cats.handler"),
	}
}

// Register attaches the cats routes to the router. Route names are the
// handler identities the authorization registry keys on.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/orgs/{orgSlug}/cats", h.List).Methods(http.MethodGet).Name(HandlerList)
	r.HandleFunc("/orgs/{orgSlug}/cats", h.Create).Methods(http.MethodPost).Name(HandlerCreate)
	r.HandleFunc("/cats/{id}", h.Get).Methods(http.MethodGet).Name(HandlerGet)
	r.HandleFunc("/cats/{id}", h.Update).Methods(http.MethodPut).Name(HandlerUpdate)
	r.HandleFunc("/cats/{id}", h.Delete).Methods(http.MethodDelete).Name(HandlerDelete)
	r.HandleFunc("/users/{userId}/cats", h.Adopted).Methods(http.MethodGet).Name(HandlerAdopted)
}

// List returns the cats of the organization addressed by slug.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := mux.Vars(r)["orgSlug"]

	orgID, err := h.orgs.ResolveSlug(ctx, slug)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if orgID == "" {
		http.Error(w, "organization not found", http.StatusNotFound)
		return
	}

	cats, err := h.reads.FindByOrg(ctx, orgID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.respond(w, http.StatusOK, cats)
}

// Get returns a single cat by id.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	cat, err := h.reads.FindByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, cat)
}

// Adopted returns the cats adopted by the addressed user.
func (h *Handler) Adopted(w http.ResponseWriter, r *http.Request) {
	cats, err := h.reads.FindByAdopter(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, cats)
}

// createRequest is the accepted creation payload.
type createRequest struct {
	Name  string `json:"name"`
	Breed string `json:"breed"`
	Age   int    `json:"age"`
}

// Create stores a new cat in the organization addressed by slug.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := mux.Vars(r)["orgSlug"]

	orgID, err := h.orgs.ResolveSlug(ctx, slug)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if orgID == "" {
		http.Error(w, "organization not found", http.StatusNotFound)
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	oid, err := primitive.ObjectIDFromHex(orgID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	cat := &Cat{
		OrgID: oid,
		Name:  req.Name,
		Breed: req.Breed,
		Age:   req.Age,
	}
	if err := h.writes.Insert(ctx, cat); err != nil {
		h.fail(w, r, err)
		return
	}

	h.respond(w, http.StatusCreated, cat)
}

// Update applies a partial update to a cat.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var update Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	cat, err := h.writes.Update(r.Context(), mux.Vars(r)["id"], update)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, cat)
}

// Delete removes a cat.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.writes.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("Failed to encode response", logging.Err(err))
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	logger := logging.LoggerFromContext(r.Context())
	if logger == nil {
		logger = h.logger
	}

	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidID):
		http.Error(w, "cat not found", http.StatusNotFound)
	default:
		logger.Error("Request failed", logging.Err(err), "path", r.URL.Path)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
