package domain

import (
	"context"
	"errors"

	"github.com/bazaarlabs/settlement/pkg/db/pagination"
)

// Entry is one action to record. ActorType defaults to system when empty.
type Entry struct {
	ActorType  ActorType
	ActorID    *string
	Action     string
	TargetType string
	TargetID   *string
	Metadata   map[string]any
}

type ListRequest struct {
	Filter ListFilter
	Page   pagination.Pagination
}

type ListResponse struct {
	Data       []AuditLog          `json:"data"`
	Pagination pagination.PageInfo `json:"pagination"`
}

type Service interface {
	// Record writes one audit entry. Sensitive metadata values are redacted
	// before they hit storage.
	Record(ctx context.Context, entry Entry) error

	List(ctx context.Context, req ListRequest) (*ListResponse, error)
}

var (
	ErrInvalidAction    = errors.New("invalid_audit_action")
	ErrInvalidTimeRange = errors.New("invalid_audit_time_range")
)
