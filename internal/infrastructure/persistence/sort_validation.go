package persistence

import (
	"strings"

	"gorm.io/gorm"

	"github.com/unicef/etools-sub003/internal/domain/shared"
)

// ValidateSortField validates the sort field against a whitelist of allowed
// fields. Returns the defaultField if the input is invalid, empty, or not in
// the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// applySort translates the filter's sort keys into ORDER BY clauses,
// dropping any field outside the whitelist. With no admissible key the
// default ordering is created_at DESC.
func applySort(query *gorm.DB, sort []shared.SortKey, allowedFields map[string]bool) *gorm.DB {
	applied := false
	for _, key := range sort {
		field := strings.TrimSpace(key.Field)
		if field == "" || !allowedFields[field] {
			continue
		}
		dir := "ASC"
		if key.Desc {
			dir = "DESC"
		}
		query = query.Order(field + " " + dir)
		applied = true
	}
	if !applied {
		query = query.Order("created_at DESC")
	}
	return query
}

// applyPagination applies the filter's page window.
func applyPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	return query
}

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// EngagementSortFields contains allowed sort fields for engagements
var EngagementSortFields = map[string]bool{
	"id":                    true,
	"created_at":            true,
	"updated_at":            true,
	"reference_number":      true,
	"type":                  true,
	"status":                true,
	"partner_name":          true,
	"partner_contacted_at":  true,
	"date_of_report_submit": true,
	"date_of_final_report":  true,
}

// VisitSortFields contains allowed sort fields for TPM visits
var VisitSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"reference_number": true,
	"status":           true,
	"vendor_number":    true,
	"date_of_assigned": true,
}

// AssessmentSortFields contains allowed sort fields for PSEA assessments
var AssessmentSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"reference_number": true,
	"status":           true,
	"partner_name":     true,
	"assessment_date":  true,
	"overall_rating":   true,
}

// OrganizationSortFields contains allowed sort fields for organizations
var OrganizationSortFields = map[string]bool{
	"id":                   true,
	"created_at":           true,
	"updated_at":           true,
	"vendor_number":        true,
	"name":                 true,
	"short_name":           true,
	"type":                 true,
	"risk_rating":          true,
	"last_assessment_date": true,
	"audits_completed":     true,
}

// TransferSortFields contains allowed sort fields for inventory transfers
var TransferSortFields = map[string]bool{
	"id":                      true,
	"created_at":              true,
	"updated_at":              true,
	"name":                    true,
	"unicef_release_order":    true,
	"waybill_id":              true,
	"transfer_type":           true,
	"status":                  true,
	"origin_check_out_at":     true,
	"destination_check_in_at": true,
}

// PointOfInterestSortFields contains allowed sort fields for locations
var PointOfInterestSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"name":            true,
	"p_code":          true,
	"is_active":       true,
	"approval_status": true,
}
