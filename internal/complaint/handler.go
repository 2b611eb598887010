package complaint

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/fairdesk-io/fairdesk/internal/audit"
	"github.com/fairdesk-io/fairdesk/internal/auth"
	"github.com/fairdesk-io/fairdesk/internal/authz"
)

// Repository is the store surface the handler needs. *Store satisfies it.
type Repository interface {
	Create(ctx context.Context, c *Complaint) (*Complaint, error)
	GetByID(ctx context.Context, id string) (*Complaint, error)
	Update(ctx context.Context, id string, patch Patch) (*Complaint, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, scope authz.Scope) ([]Complaint, error)
	CountByStatus(ctx context.Context, scope authz.Scope) (Stats, error)
}

// AssigneeDirectory resolves a uid to employee assignment details.
// directory.Store satisfies it.
type AssigneeDirectory interface {
	Employee(ctx context.Context, uid string) (email, name, tenantID string, found bool, err error)
}

// Notifier is poked after every accepted write so live feeds re-deliver.
type Notifier interface {
	Notify()
}

// Handler handles complaint HTTP endpoints.
type Handler struct {
	store     Repository
	directory AssigneeDirectory
	audit     audit.Logger
	feed      Notifier
}

func NewHandler(store Repository, dir AssigneeDirectory, auditLogger audit.Logger, feed Notifier) *Handler {
	if auditLogger == nil {
		auditLogger = audit.NopLogger{}
	}
	return &Handler{store: store, directory: dir, audit: auditLogger, feed: feed}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/complaints", h.HandleCreate)
	mux.HandleFunc("GET /api/v1/complaints", h.HandleList)
	mux.HandleFunc("GET /api/v1/complaints/stats", h.HandleStats)
	mux.HandleFunc("GET /api/v1/complaints/{id}", h.HandleGet)
	mux.HandleFunc("PATCH /api/v1/complaints/{id}", h.HandleUpdate)
	mux.HandleFunc("DELETE /api/v1/complaints/{id}", h.HandleDelete)
}

// HandleCreate files a new complaint for the authenticated principal.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	identity := auth.GetIdentity(r.Context())
	if identity == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)

	var req struct {
		Subject     string `json:"subject"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	c, err := New(identity.Principal(), identity.Email, req.Subject, req.Description)
	if err != nil {
		writeValidationError(w, err)
		return
	}

	created, err := h.store.Create(r.Context(), c)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "creating complaint failed"})
		return
	}

	h.audit.Log(r.Context(), audit.Event{
		TenantID:     created.TenantID,
		ActorUID:     identity.UID,
		Action:       audit.ActionComplaintCreated,
		ResourceType: "complaint",
		ResourceID:   created.ID,
	})
	h.notify()

	writeJSON(w, http.StatusCreated, created)
}

// HandleGet returns a single complaint. Outside the principal's view the
// response is indistinguishable from a missing id.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	identity := auth.GetIdentity(r.Context())
	if identity == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}

	c, ok := h.fetchVisible(w, r, identity.Principal())
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// HandleList returns the complaints inside the principal's scope,
// newest first.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	identity := auth.GetIdentity(r.Context())
	if identity == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}

	complaints, err := h.store.List(r.Context(), authz.ScopeFor(identity.Principal()))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "listing complaints failed"})
		return
	}

	if complaints == nil {
		complaints = []Complaint{}
	}
	writeJSON(w, http.StatusOK, complaints)
}

// HandleStats returns status counts within the principal's scope.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	identity := auth.GetIdentity(r.Context())
	if identity == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}

	stats, err := h.store.CountByStatus(r.Context(), authz.ScopeFor(identity.Principal()))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "counting complaints failed"})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// HandleUpdate applies a partial mutation through the lifecycle
// validator. Unchanged resubmitted fields are ignored; any real change
// outside the held capabilities rejects the whole request.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	identity := auth.GetIdentity(r.Context())
	if identity == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}
	principal := identity.Principal()

	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)

	var req struct {
		Subject         *string `json:"subject"`
		Description     *string `json:"description"`
		Status          *string `json:"status"`
		EmployeeComment *string `json:"employeeComment"`
		AssignedToUID   *string `json:"assignedToUid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	c, ok := h.fetchVisible(w, r, principal)
	if !ok {
		return
	}

	update := UpdateRequest{
		Subject:         req.Subject,
		Description:     req.Description,
		EmployeeComment: req.EmployeeComment,
	}

	if req.Status != nil {
		status, err := ParseStatus(*req.Status)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		update.Status = &status
	}

	if req.AssignedToUID != nil {
		update.Assignment = requestedAssignment(c, *req.AssignedToUID)
	}

	patch, err := ApplyUpdate(principal, c, update, time.Now().UTC())
	if err != nil {
		var perm *authz.PermissionError
		if errors.As(err, &perm) {
			h.audit.Log(r.Context(), audit.Event{
				TenantID:     c.TenantID,
				ActorUID:     identity.UID,
				Action:       audit.ActionAccessDenied,
				ResourceType: "complaint",
				ResourceID:   c.ID,
				Metadata:     map[string]any{audit.MetadataMissing: perm.Missing.Names()},
			})
			writeJSON(w, http.StatusForbidden, map[string]any{
				"error":   "permission denied",
				"missing": perm.Missing.Names(),
			})
			return
		}
		if errors.Is(err, ErrInvalidStatus) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		writeValidationError(w, err)
		return
	}

	if !patch.HasChanges() {
		// Idempotent resubmission: nothing to persist.
		writeJSON(w, http.StatusOK, c)
		return
	}

	// Directory resolution happens only after the mutation is authorized:
	// answering "is this uid an employee of the tenant" to a principal
	// without the assign capability would leak directory facts.
	if patch.Assignment != nil && patch.Assignment.UID != "" {
		email, name, tenantID, found, err := h.directory.Employee(r.Context(), patch.Assignment.UID)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "assignee lookup failed"})
			return
		}
		if !found || tenantID != c.TenantID {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": ErrBadAssignee.Error()})
			return
		}
		patch.Assignment.Email = email
		patch.Assignment.Name = name
	}

	updated, err := h.store.Update(r.Context(), c.ID, patch)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "complaint not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "updating complaint failed"})
		return
	}

	action := audit.ActionComplaintUpdated
	metadata := map[string]any{}
	if patch.Status != nil {
		metadata[audit.MetadataStatus] = string(*patch.Status)
	}
	if patch.Assignment != nil {
		action = audit.ActionComplaintAssigned
		metadata[audit.MetadataAssignee] = patch.Assignment.UID
	}
	h.audit.Log(r.Context(), audit.Event{
		TenantID:     updated.TenantID,
		ActorUID:     identity.UID,
		Action:       action,
		ResourceType: "complaint",
		ResourceID:   updated.ID,
		Metadata:     metadata,
	})
	h.notify()

	writeJSON(w, http.StatusOK, updated)
}

// HandleDelete destroys a complaint. Management only.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	identity := auth.GetIdentity(r.Context())
	if identity == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}
	principal := identity.Principal()

	c, ok := h.fetchVisible(w, r, principal)
	if !ok {
		return
	}

	caps := authz.Capabilities(principal, c.Resource())
	if err := authz.Require(caps, authz.CapabilitySet(authz.CapDelete)); err != nil {
		h.audit.Log(r.Context(), audit.Event{
			TenantID:     c.TenantID,
			ActorUID:     identity.UID,
			Action:       audit.ActionAccessDenied,
			ResourceType: "complaint",
			ResourceID:   c.ID,
			Metadata:     map[string]any{audit.MetadataMissing: []string{authz.CapDelete.String()}},
		})
		writeJSON(w, http.StatusForbidden, map[string]any{
			"error":   "permission denied",
			"missing": []string{authz.CapDelete.String()},
		})
		return
	}

	if err := h.store.Delete(r.Context(), c.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "complaint not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "deleting complaint failed"})
		return
	}

	h.audit.Log(r.Context(), audit.Event{
		TenantID:     c.TenantID,
		ActorUID:     identity.UID,
		Action:       audit.ActionComplaintDeleted,
		ResourceType: "complaint",
		ResourceID:   c.ID,
	})
	h.notify()

	w.WriteHeader(http.StatusNoContent)
}

// fetchVisible loads the target complaint and enforces the
// view-or-not-found rule: a complaint outside the principal's view
// answers exactly like a missing id, so unauthorized principals cannot
// learn whether it exists.
func (h *Handler) fetchVisible(w http.ResponseWriter, r *http.Request, p authz.Principal) (*Complaint, bool) {
	id := r.PathValue("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing complaint id"})
		return nil, false
	}

	c, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "complaint not found"})
			return nil, false
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "fetching complaint failed"})
		return nil, false
	}

	if !authz.Capabilities(p, c.Resource()).Has(authz.CapView) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "complaint not found"})
		return nil, false
	}
	return c, true
}

// requestedAssignment turns the submitted assignee uid into an
// Assignment for change detection. An empty uid clears the assignment;
// the stored uid carries the stored details so the validator sees a
// no-op. Details for a new assignee stay unresolved until the mutation
// has passed the capability check.
func requestedAssignment(c *Complaint, uid string) *Assignment {
	switch uid {
	case "":
		return &Assignment{}
	case c.AssignedToUID:
		return &Assignment{UID: c.AssignedToUID, Email: c.AssignedToEmail, Name: c.AssignedToName}
	default:
		return &Assignment{UID: uid}
	}
}

func (h *Handler) notify() {
	if h.feed != nil {
		h.feed.Notify()
	}
}

func writeValidationError(w http.ResponseWriter, err error) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "validation failed",
			"fields": ve.Fields,
		})
		return
	}
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
