package directory

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/fairdesk-io/fairdesk/internal/auth"
	"github.com/fairdesk-io/fairdesk/internal/authz"
)

// EmployeeLister is the store surface the handler needs. *Store
// satisfies it.
type EmployeeLister interface {
	ListEmployees(ctx context.Context, tenantID string) ([]Profile, error)
}

// Handler serves the employee directory used by the assignment picker.
type Handler struct {
	store EmployeeLister
}

func NewHandler(store EmployeeLister) *Handler {
	return &Handler{store: store}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/directory/employees", h.HandleListEmployees)
}

// HandleListEmployees lists assignable employees: every employee for
// global roles, own-tenant employees for tenant managers, nothing for
// anyone else.
func (h *Handler) HandleListEmployees(w http.ResponseWriter, r *http.Request) {
	identity := auth.GetIdentity(r.Context())
	if identity == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}

	principal := identity.Principal()

	var tenantFilter string
	switch {
	case authz.HasGlobalRights(principal):
		tenantFilter = ""
	case principal.Role == authz.RoleTenantManager && principal.TenantID != "":
		tenantFilter = principal.TenantID
	default:
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
		return
	}

	employees, err := h.store.ListEmployees(r.Context(), tenantFilter)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "listing employees failed"})
		return
	}

	if employees == nil {
		employees = []Profile{}
	}
	writeJSON(w, http.StatusOK, employees)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
