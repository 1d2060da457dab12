package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/unicef/etools-sub003/internal/domain/engagement"
	"github.com/unicef/etools-sub003/internal/domain/shared"
	"github.com/unicef/etools-sub003/internal/infrastructure/persistence/models"
)

// GormEngagementRepository implements engagement.Repository using GORM
type GormEngagementRepository struct {
	db *gorm.DB
}

// NewGormEngagementRepository creates a new GormEngagementRepository
func NewGormEngagementRepository(db *gorm.DB) *GormEngagementRepository {
	return &GormEngagementRepository{db: db}
}

// FindByID finds an engagement by its ID
func (r *GormEngagementRepository) FindByID(ctx context.Context, id uuid.UUID) (*engagement.Engagement, error) {
	var model models.EngagementModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFound("engagement")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds an engagement by ID within a tenant
func (r *GormEngagementRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*engagement.Engagement, error) {
	var model models.EngagementModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFound("engagement")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds all engagements for a tenant with filtering
func (r *GormEngagementRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]engagement.Engagement, error) {
	var rows []models.EngagementModel
	query := r.filtered(
		r.db.WithContext(ctx).Model(&models.EngagementModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	query = applySort(query, filter.Sort, EngagementSortFields)
	query = applyPagination(query, filter)

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]engagement.Engagement, 0, len(rows))
	for i := range rows {
		result = append(result, *rows[i].ToDomain())
	}
	return result, nil
}

// CountForTenant counts engagements for a tenant with optional filters
func (r *GormEngagementRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.filtered(
		r.db.WithContext(ctx).Model(&models.EngagementModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates an engagement. On first insert the tenant-scoped
// sequence number is assigned under the counter row lock.
func (r *GormEngagementRepository) Save(ctx context.Context, e *engagement.Engagement) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if e.SequenceNumber == 0 {
			seq, err := nextSequence(tx, e.TenantID, sequenceScopeEngagement)
			if err != nil {
				return err
			}
			e.SequenceNumber = seq
		}
		model := models.EngagementModelFromDomain(e)
		return tx.Save(model).Error
	})
}

// SaveWithLock saves with optimistic locking on the version column.
func (r *GormEngagementRepository) SaveWithLock(ctx context.Context, e *engagement.Engagement) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		if err := tx.Model(&models.EngagementModel{}).
			Where("id = ?", e.ID).
			Select("version").
			Scan(&currentVersion).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.NewNotFound("engagement")
			}
			return err
		}
		if currentVersion != e.Version {
			return shared.NewConflict("the engagement has been modified by another user")
		}

		e.Version++
		e.UpdatedAt = time.Now()
		model := models.EngagementModelFromDomain(e)

		result := tx.Model(&models.EngagementModel{}).
			Where("id = ? AND version = ?", e.ID, currentVersion).
			Select("*").
			Updates(model)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewConflict("the engagement has been modified by another user")
		}
		return nil
	})
}

// filtered applies search and field filters without pagination. Search spans
// the reference number, the partner and firm names and vendor numbers, and the
// focal points' user name parts.
func (r *GormEngagementRepository) filtered(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where(engagementSearchSQL, map[string]any{"p": "%" + filter.Search + "%"})
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			cond, args := engagementStatusPredicate(value)
			query = query.Where(cond, args...)
		case "type", "engagement_type":
			query = query.Where("type = ?", value)
		case "partner_id":
			query = query.Where("partner_id = ?", value)
		case "auditor_firm_id":
			query = query.Where("auditor_firm_id = ?", value)
		case "focal_point_id":
			query = query.Where("focal_point_ids @> ?::jsonb", jsonbUUIDElement(value))
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at <= ?", t)
			}
		}
	}
	return query
}

// engagementSearchSQL spans the engagement's own columns plus the partner and
// firm organizations and the focal points' user names.
const engagementSearchSQL = `reference_number ILIKE @p OR partner_name ILIKE @p
	OR partner_id IN (SELECT id FROM organizations WHERE vendor_number ILIKE @p OR name ILIKE @p)
	OR auditor_firm_id IN (SELECT id FROM organizations WHERE vendor_number ILIKE @p OR name ILIKE @p)
	OR EXISTS (SELECT 1 FROM users u WHERE (u.first_name ILIKE @p OR u.last_name ILIKE @p)
		AND engagements.focal_point_ids @> to_jsonb(u.id::text))`

// displayStampColumns mirrors the candidate order of Engagement.DisplayStatus.
// On equal stamps the earlier column wins.
var displayStampColumns = []struct {
	label  engagement.DisplaySubStatus
	column string
}{
	{engagement.SubStatusFieldVisit, "date_of_field_visit"},
	{engagement.SubStatusDraftIssuedToPartner, "date_of_draft_report_to_ip"},
	{engagement.SubStatusCommentsByPartner, "date_of_comments_by_ip"},
	{engagement.SubStatusDraftIssuedToUNICEF, "date_of_draft_report_to_unicef"},
	{engagement.SubStatusCommentsByUNICEF, "date_of_comments_by_unicef"},
}

// engagementStatusPredicate turns a status filter value into SQL. Stored
// statuses match the status column; display sub-statuses match rows in
// partner_contacted whose most recent milestone stamp carries that label.
func engagementStatusPredicate(value any) (string, []any) {
	s, ok := value.(string)
	if !ok {
		return "status = ?", []any{value}
	}
	label := engagement.DisplaySubStatus(s)

	if label == engagement.SubStatusPartnerContacted {
		conds := []string{"status = 'partner_contacted'"}
		for _, c := range displayStampColumns {
			conds = append(conds, fmt.Sprintf(
				"(%s IS NULL OR (partner_contacted_at IS NOT NULL AND %s <= partner_contacted_at))",
				c.column, c.column))
		}
		return strings.Join(conds, " AND "), nil
	}

	idx := -1
	for i, c := range displayStampColumns {
		if c.label == label {
			idx = i
			break
		}
	}
	if idx < 0 {
		return "status = ?", []any{s}
	}

	col := displayStampColumns[idx].column
	conds := []string{
		"status = 'partner_contacted'",
		col + " IS NOT NULL",
		fmt.Sprintf("(partner_contacted_at IS NULL OR %s > partner_contacted_at)", col),
	}
	for j, c := range displayStampColumns {
		if j == idx {
			continue
		}
		op := ">"
		if j > idx {
			op = ">="
		}
		conds = append(conds, fmt.Sprintf("(%s IS NULL OR %s %s %s)", c.column, col, op, c.column))
	}
	return strings.Join(conds, " AND "), nil
}

// Ensure GormEngagementRepository implements engagement.Repository
var _ engagement.Repository = (*GormEngagementRepository)(nil)
