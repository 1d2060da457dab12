// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Key Principles:
// 1. Domain entities should be free of GORM tags and infrastructure concerns
// 2. Persistence models contain all GORM annotations and table mappings
// 3. Mappers convert between domain entities and persistence models
// 4. Repositories use persistence models for database operations
//
// Structure:
// - base.go: Base persistence models and the tenant sequence counter
// - assurance.go: Engagement workflow models
// - tpm.go: TPM visit models
// - psea.go: PSEA assessment and indicator catalog models
// - identity.go: Organization, user and staff member models
// - lastmile.go: Inventory network models (locations, materials, transfers, items, audit)
// - integration.go: Cached ERP purchase order models
//
// The risk question catalog is the exception: its domain structs carry the
// GORM mapping directly because the catalog is a plain read-mostly tree with
// no invariants to protect.
package models
