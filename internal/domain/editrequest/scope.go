package editrequest

import (
	"github.com/chartgate/chartgate/internal/platform/auth"
)

// CanCreate reports whether the actor may submit a request against the
// record: elevated actors always may, scoped actors only for records owned
// by their own organization.
func CanCreate(actor auth.Actor, rec Record) error {
	if actor.Elevated() {
		return nil
	}
	if actor.OrganizationID == rec.OwnerOrgID() {
		return nil
	}
	return ErrForbidden
}

// CanResolve reports whether the actor may resolve requests or see the
// global pending view. Only elevated actors may; the pending list is a
// cross-organization view.
func CanResolve(actor auth.Actor) error {
	if actor.Elevated() {
		return nil
	}
	return ErrForbidden
}
