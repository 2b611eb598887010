package complaint

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fairdesk-io/fairdesk/internal/authz"
)

var (
	ErrNotFound      = errors.New("complaint not found")
	ErrValidation    = errors.New("validation failed")
	ErrInvalidStatus = errors.New("invalid status")
	ErrBadAssignee   = errors.New("assignee must be an employee of the complaint's tenant")
)

// Status is the complaint workflow state. There is no forward-only
// ordering: any holder of the edit-status capability may set any value,
// including reopening a resolved complaint.
type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusInProgress Status = "IN_PROGRESS"
	StatusResolved   Status = "RESOLVED"
)

// ParseStatus validates a status value from the wire.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusOpen, StatusInProgress, StatusResolved:
		return Status(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

// Complaint is a filed complaint. TenantID is copied from the creator's
// principal at creation and never changes; CreatedByUID and CreatedAt are
// likewise immutable; UpdatedAt moves forward on every accepted mutation.
type Complaint struct {
	ID              string    `json:"id"`
	Subject         string    `json:"subject"`
	Description     string    `json:"description"`
	Status          Status    `json:"status"`
	TenantID        string    `json:"tenantId"`
	CreatedByUID    string    `json:"createdByUid"`
	CreatedByEmail  string    `json:"createdByEmail"`
	AssignedToUID   string    `json:"assignedToUid,omitempty"`
	AssignedToEmail string    `json:"assignedToEmail,omitempty"`
	AssignedToName  string    `json:"assignedToName,omitempty"`
	EmployeeComment string    `json:"employeeComment,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Resource projects the complaint onto the fields the authorization
// engine decides over.
func (c *Complaint) Resource() authz.Resource {
	return authz.Resource{
		TenantID:      c.TenantID,
		CreatedByUID:  c.CreatedByUID,
		AssignedToUID: c.AssignedToUID,
	}
}

// ValidationError names the offending fields of a rejected request. It
// unwraps to ErrValidation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// New builds an unsaved complaint for the given creator. The tenant is
// taken from the principal, the status is always OPEN.
func New(p authz.Principal, email, subject, description string) (*Complaint, error) {
	subject = strings.TrimSpace(subject)
	description = strings.TrimSpace(description)

	var bad []string
	if subject == "" {
		bad = append(bad, "subject")
	}
	if description == "" {
		bad = append(bad, "description")
	}
	if len(bad) > 0 {
		return nil, &ValidationError{Fields: bad}
	}

	return &Complaint{
		Subject:        subject,
		Description:    description,
		Status:         StatusOpen,
		TenantID:       p.TenantID,
		CreatedByUID:   p.UID,
		CreatedByEmail: email,
	}, nil
}
