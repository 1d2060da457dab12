// Package authz glues role resolution to the permission matrix for the
// application services. Roles are computed per request from the actor and
// the subject's membership sets, never cached across transitions.
package authz

import (
	"github.com/unicef/etools-sub003/internal/domain/identity"
	"github.com/unicef/etools-sub003/internal/domain/permission"
	"github.com/unicef/etools-sub003/internal/domain/shared"
)

// Authorizer answers action and field questions for one request.
type Authorizer struct {
	matrix   *permission.Matrix
	resolver *identity.RoleResolver
}

func New(matrix *permission.Matrix, resolver *identity.RoleResolver) *Authorizer {
	return &Authorizer{matrix: matrix, resolver: resolver}
}

// Roles resolves the actor's roles for a subject.
func (a *Authorizer) Roles(actor identity.Actor, subject identity.SubjectContext) []identity.Role {
	return a.resolver.Resolve(actor, subject)
}

// RequireAction refuses with not_allowed_for_role unless some role of the
// actor permits the action in the subject's current status.
func (a *Authorizer) RequireAction(actor identity.Actor, subject identity.SubjectContext, status, action string) error {
	roles := a.Roles(actor, subject)
	if !a.matrix.AnyActionAllowed(subject.Kind, status, roles, action) {
		return shared.NewPermissionDenied(action)
	}
	return nil
}

// ReadableFields filters a field list down to what the actor may read.
func (a *Authorizer) ReadableFields(actor identity.Actor, subject identity.SubjectContext, status string, fields []string) map[string]bool {
	roles := a.Roles(actor, subject)
	out := make(map[string]bool, len(fields))
	for _, f := range fields {
		if a.matrix.CombinedFieldPermission(subject.Kind, status, roles, f) >= permission.Read {
			out[f] = true
		}
	}
	return out
}

// CanWrite answers a single-field write check.
func (a *Authorizer) CanWrite(actor identity.Actor, subject identity.SubjectContext, status, field string) bool {
	roles := a.Roles(actor, subject)
	return a.matrix.CombinedFieldPermission(subject.Kind, status, roles, field) == permission.Write
}

// RequireWritable refuses the first field of the patch the actor may not
// write in the current status.
func (a *Authorizer) RequireWritable(actor identity.Actor, subject identity.SubjectContext, status string, fields []string) error {
	for _, f := range fields {
		if !a.CanWrite(actor, subject, status, f) {
			return shared.NewPermissionDenied("write:" + f)
		}
	}
	return nil
}
