package service

import (
	"github.com/pathlab/labledger/internal/domain"
	"github.com/pathlab/labledger/internal/domain/labcase"
)

// VisibleCases applies the single visibility rule of the ledger: admins see
// every case, everyone else sees only cases they collected. Ordering is a
// presentation concern and is not touched here.
func VisibleCases(cases []*labcase.Case, actor domain.Actor) []*labcase.Case {
	if actor.IsAdmin() {
		return cases
	}

	visible := make([]*labcase.Case, 0, len(cases))
	for _, c := range cases {
		if c.UserID == actor.ID {
			visible = append(visible, c)
		}
	}
	return visible
}

// ensureCaseAccess re-applies the visibility predicate before a mutation.
// A non-admin touching a case they did not collect fails regardless of what
// any UI exposed to them.
func ensureCaseAccess(c *labcase.Case, actor domain.Actor) error {
	if actor.IsAdmin() {
		return nil
	}
	if c.UserID != actor.ID {
		return ErrForbidden
	}
	return nil
}

// visibleCasesQuery pushes the same predicate down into the list query so
// non-admin listings never load other collectors' cases at all.
func visibleCasesQuery(actor domain.Actor) *labcase.ListCasesQuery {
	q := &labcase.ListCasesQuery{}
	if !actor.IsAdmin() {
		id := actor.ID
		q.CollectorID = &id
	}
	return q
}
