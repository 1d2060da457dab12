package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortField(t *testing.T) {
	allowed := map[string]bool{
		"created_at":       true,
		"reference_number": true,
		"status":           true,
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"allowed field passes through", "reference_number", "reference_number"},
		{"empty input falls back", "", "created_at"},
		{"whitespace input falls back", "   ", "created_at"},
		{"unknown field falls back", "partner_name", "created_at"},
		{"injection attempt falls back", "status; DROP TABLE engagements", "created_at"},
		{"trims surrounding whitespace", "  status  ", "status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortField(tt.input, allowed, "created_at"))
		})
	}
}

func TestSortFieldWhitelists(t *testing.T) {
	whitelists := map[string]map[string]bool{
		"common":       CommonSortFields,
		"engagement":   EngagementSortFields,
		"visit":        VisitSortFields,
		"assessment":   AssessmentSortFields,
		"organization": OrganizationSortFields,
		"transfer":     TransferSortFields,
		"location":     PointOfInterestSortFields,
	}

	for name, fields := range whitelists {
		t.Run(name, func(t *testing.T) {
			assert.True(t, fields["created_at"], "created_at must be sortable")
			assert.True(t, fields["id"], "id must be sortable")
		})
	}
}
