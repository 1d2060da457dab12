package persistence

import (
	"gorm.io/gorm"

	"github.com/unicef/etools-sub003/internal/domain/risk"
	"github.com/unicef/etools-sub003/internal/infrastructure/persistence/models"
)

// AutoMigrate creates or updates every table the repositories touch.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.SequenceCounter{},
		&models.EngagementModel{},
		&models.VisitModel{},
		&models.AssessmentModel{},
		&models.IndicatorModel{},
		&models.OrganizationModel{},
		&models.UserModel{},
		&models.StaffMemberModel{},
		&models.PointOfInterestModel{},
		&models.PoITypeModel{},
		&models.PoITypeMappingModel{},
		&models.ConsigneeModel{},
		&models.MaterialModel{},
		&models.PartnerMaterialModel{},
		&models.TransferModel{},
		&models.TransferHistoryModel{},
		&models.ItemModel{},
		&models.ItemAuditLogModel{},
		&models.TransferEvidenceModel{},
		&models.PurchaseOrderModel{},
		&models.PurchaseOrderItemModel{},
		&risk.Category{},
		&risk.BluePrint{},
		&risk.Risk{},
	)
}
