package persistence

import "fmt"

// jsonbUUIDElement renders a one-element jsonb array literal for membership
// checks against uuid-list columns, e.g. focal_point_ids @> '["<id>"]'.
func jsonbUUIDElement(value any) string {
	return fmt.Sprintf(`["%v"]`, value)
}
