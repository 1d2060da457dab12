package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/unicef/etools-sub003/internal/domain/lastmile"
	"github.com/unicef/etools-sub003/internal/domain/shared"
	"github.com/unicef/etools-sub003/internal/infrastructure/persistence/models"
)

// GormTransferRepository implements lastmile.TransferRepository. The
// composite Save* methods write the transfer, its derived transfers, every
// touched item and the audit rows in one transaction.
type GormTransferRepository struct {
	db *gorm.DB
}

// NewGormTransferRepository creates a new transfer repository.
func NewGormTransferRepository(db *gorm.DB) *GormTransferRepository {
	return &GormTransferRepository{db: db}
}

// FindByID retrieves a transfer with its items.
func (r *GormTransferRepository) FindByID(ctx context.Context, id uuid.UUID) (*lastmile.Transfer, error) {
	return r.findByID(ctx, id, false)
}

// FindByIDForUpdate retrieves a transfer with its items under a row lock
// so concurrent check-ins of the same transfer serialize.
func (r *GormTransferRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*lastmile.Transfer, error) {
	return r.findByID(ctx, id, true)
}

func (r *GormTransferRepository) findByID(ctx context.Context, id uuid.UUID, forUpdate bool) (*lastmile.Transfer, error) {
	query := r.db.WithContext(ctx)
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var model models.TransferModel
	if err := query.First(&model, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "transfer")
	}
	t := model.ToDomain()
	items, err := r.loadItems(r.db.WithContext(ctx), []uuid.UUID{t.ID})
	if err != nil {
		return nil, err
	}
	t.Items = items[t.ID]
	return t, nil
}

// FindForLocation lists a location's transfers for one listing direction.
func (r *GormTransferRepository) FindForLocation(ctx context.Context, tenantID, poiID, partnerID uuid.UUID, direction lastmile.ListDirection, filter shared.Filter) ([]lastmile.Transfer, error) {
	query := r.db.WithContext(ctx).
		Model(&models.TransferModel{}).
		Where("tenant_id = ?", tenantID).
		Where("partner_id = ? OR recipient_partner_id = ?", partnerID, partnerID)

	switch direction {
	case lastmile.DirectionIncoming:
		query = query.Where("destination_point_id = ? AND status = ?", poiID, string(lastmile.TransferPending)).
			Where("transfer_type <> ?", string(lastmile.TypeHandover))
	case lastmile.DirectionCheckedIn:
		query = query.Where("destination_point_id = ? AND status = ?", poiID, string(lastmile.TransferCompleted))
	case lastmile.DirectionOutgoing:
		query = query.Where("origin_point_id = ? AND status = ?", poiID, string(lastmile.TransferPending))
	case lastmile.DirectionCompleted:
		query = query.Where("origin_point_id = ? AND status = ?", poiID, string(lastmile.TransferCompleted))
	case lastmile.DirectionHandover:
		query = query.Where("transfer_type = ?", string(lastmile.TypeHandover)).
			Where("origin_point_id = ? OR destination_point_id = ?", poiID, poiID)
	}

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR unicef_release_order ILIKE ? OR waybill_id ILIKE ?", pattern, pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "transfer_type":
			query = query.Where("transfer_type = ?", value)
		case "transfer_subtype":
			query = query.Where("transfer_subtype = ?", value)
		}
	}

	query = applySort(query, filter.Sort, TransferSortFields)
	query = applyPagination(query, filter)

	var rows []models.TransferModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for i := range rows {
		ids = append(ids, rows[i].ID)
	}
	items, err := r.loadItems(r.db.WithContext(ctx), ids)
	if err != nil {
		return nil, err
	}

	transfers := make([]lastmile.Transfer, 0, len(rows))
	for i := range rows {
		t := rows[i].ToDomain()
		t.Items = items[t.ID]
		transfers = append(transfers, *t)
	}
	return transfers, nil
}

// FindReversalInHistory looks up the reversal already recorded for a
// transfer inside its movement history.
func (r *GormTransferRepository) FindReversalInHistory(ctx context.Context, historyID, originTransferID uuid.UUID) (*lastmile.Transfer, error) {
	var model models.TransferModel
	err := r.db.WithContext(ctx).
		Where("transfer_history_id = ? AND origin_transfer_id = ? AND transfer_subtype = ?",
			historyID, originTransferID, string(lastmile.SubtypeReversal)).
		First(&model).Error
	if err != nil {
		return nil, notFoundOr(err, "reversal")
	}
	t := model.ToDomain()
	items, err := r.loadItems(r.db.WithContext(ctx), []uuid.UUID{t.ID})
	if err != nil {
		return nil, err
	}
	t.Items = items[t.ID]
	return t, nil
}

// Save persists a transfer and its items.
func (r *GormTransferRepository) Save(ctx context.Context, t *lastmile.Transfer) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.saveTransfer(tx, t)
	})
}

// SaveCheckIn writes a completed check-in: the primary transfer, the short,
// surplus or handover transfers derived from it, every item and the audit
// rows, all in one transaction.
func (r *GormTransferRepository) SaveCheckIn(ctx context.Context, t *lastmile.Transfer, derived []*lastmile.Transfer, logs []*lastmile.ItemAuditLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.saveTransfer(tx, t); err != nil {
			return err
		}
		for _, d := range derived {
			d.TransferHistoryID = t.TransferHistoryID
			if err := r.saveTransfer(tx, d); err != nil {
				return err
			}
		}
		return appendAuditLogs(tx, logs)
	})
}

// SaveCheckOut writes a check-out: the outgoing transfer with the items it
// takes, the partially drained source items left behind, and the audit rows.
func (r *GormTransferRepository) SaveCheckOut(ctx context.Context, out *lastmile.Transfer, drainedSources []*lastmile.Item, logs []*lastmile.ItemAuditLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.saveTransfer(tx, out); err != nil {
			return err
		}
		for _, item := range drainedSources {
			if err := tx.Save(models.ItemModelFromDomain(item)).Error; err != nil {
				return err
			}
		}
		return appendAuditLogs(tx, logs)
	})
}

// SaveReverse writes a reversal: the reversing transfer, the items it
// carries back, and the audit rows.
func (r *GormTransferRepository) SaveReverse(ctx context.Context, rev *lastmile.Transfer, logs []*lastmile.ItemAuditLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.saveTransfer(tx, rev); err != nil {
			return err
		}
		return appendAuditLogs(tx, logs)
	})
}

// SaveHistory persists a movement history row.
func (r *GormTransferRepository) SaveHistory(ctx context.Context, h *lastmile.TransferHistory) error {
	model := &models.TransferHistoryModel{}
	model.FromDomain(h)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveEvidence persists a post-hoc evidence attachment.
func (r *GormTransferRepository) SaveEvidence(ctx context.Context, e *lastmile.TransferEvidence) error {
	model := &models.TransferEvidenceModel{}
	model.FromDomain(e)
	return r.db.WithContext(ctx).Save(model).Error
}

// saveTransfer writes one transfer row and its items. First inserts get a
// tenant-scoped sequence number and, when the transfer starts a new
// movement, a fresh history row.
func (r *GormTransferRepository) saveTransfer(tx *gorm.DB, t *lastmile.Transfer) error {
	if t.SequenceNumber == 0 {
		seq, err := nextSequence(tx, t.TenantID, sequenceScopeTransfer)
		if err != nil {
			return err
		}
		t.SequenceNumber = seq
	}
	if t.TransferHistoryID == uuid.Nil {
		history := &lastmile.TransferHistory{
			BaseEntity:        shared.NewBaseEntity(),
			PrimaryTransferID: t.ID,
		}
		model := &models.TransferHistoryModel{}
		model.FromDomain(history)
		if err := tx.Create(model).Error; err != nil {
			return err
		}
		t.TransferHistoryID = history.ID
	}

	if err := tx.Save(models.TransferModelFromDomain(t)).Error; err != nil {
		return err
	}
	for _, item := range t.Items {
		if err := tx.Save(models.ItemModelFromDomain(item)).Error; err != nil {
			return err
		}
	}
	return nil
}

func appendAuditLogs(tx *gorm.DB, logs []*lastmile.ItemAuditLog) error {
	for _, log := range logs {
		if err := tx.Create(models.ItemAuditLogModelFromDomain(log)).Error; err != nil {
			return err
		}
	}
	return nil
}

// loadItems fetches the items of the given transfers keyed by transfer id.
func (r *GormTransferRepository) loadItems(query *gorm.DB, transferIDs []uuid.UUID) (map[uuid.UUID][]*lastmile.Item, error) {
	var rows []models.ItemModel
	err := query.
		Where("transfer_id IN ?", transferIDs).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	items := make(map[uuid.UUID][]*lastmile.Item, len(transferIDs))
	for i := range rows {
		items[rows[i].TransferID] = append(items[rows[i].TransferID], rows[i].ToDomain())
	}
	return items, nil
}

var _ lastmile.TransferRepository = (*GormTransferRepository)(nil)
