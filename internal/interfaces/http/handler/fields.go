package handler

import (
	"encoding/json"

	"github.com/unicef/etools-sub003/internal/domain/identity"
	"github.com/unicef/etools-sub003/internal/domain/permission"
)

// alwaysVisible are the envelope fields every role may see regardless of
// the matrix.
var alwaysVisible = map[string]bool{
	"id":               true,
	"reference_number": true,
	"engagement_type":  true,
	"status":           true,
	"display_status":   true,
	"created_at":       true,
	"updated_at":       true,
}

// filterFields renders a response payload as a map with the fields the
// actor's roles may not read removed. The services return the full shape;
// output shaping is an interface concern.
func filterFields(payload any, matrix *permission.Matrix, kind identity.WorkflowKind, status string, roles []identity.Role) (map[string]any, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	for name := range fields {
		if alwaysVisible[name] {
			continue
		}
		if matrix.CombinedFieldPermission(kind, status, roles, name) == permission.Hidden {
			delete(fields, name)
		}
	}
	return fields, nil
}
