// Package policy holds the ownership rules for task access, kept free of
// HTTP types so the decisions are testable on their own.
package policy

import (
	"github.com/chepyr/task-collab-api/internal/apperr"
	"github.com/chepyr/task-collab-api/internal/models"
)

type Action int

const (
	ActionList Action = iota
	ActionCreate
	ActionRetrieve
	ActionUpdate
	ActionDelete
)

type Decision int

const (
	Allow Decision = iota
	Unauthenticated
	Forbidden
	// NotFound disguises a foreign task as a missing one: query scoping
	// removes it from the caller's visible set before object identity ever
	// reaches the response layer, so cross-tenant probes learn nothing.
	NotFound
)

// Err maps a decision to its taxonomy member; Allow maps to nil.
func (d Decision) Err() error {
	switch d {
	case Unauthenticated:
		return apperr.ErrUnauthenticated
	case Forbidden:
		return apperr.ErrForbidden
	case NotFound:
		return apperr.ErrNotFound
	default:
		return nil
	}
}

type Ownership struct{}

// Authorize decides whether caller may perform action. declaredOwner is the
// owner username named in a create/update payload ("" when absent); target is
// the task an instance-level operation addresses (nil for collection ops).
//
// A create naming another account's username is rejected outright rather
// than silently re-attributed; an instance operation on another account's
// task is reported as NotFound, not Forbidden.
func (Ownership) Authorize(caller *models.Account, action Action, declaredOwner string, target *models.Task) Decision {
	if caller == nil {
		return Unauthenticated
	}

	switch action {
	case ActionCreate, ActionUpdate:
		if declaredOwner != "" && declaredOwner != caller.Username {
			return Forbidden
		}
	}

	if target != nil && target.OwnerID != caller.ID {
		return NotFound
	}

	return Allow
}
