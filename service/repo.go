package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/XyloTech/GOVERN.AI/config"
	"github.com/XyloTech/GOVERN.AI/model"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens the configured database and runs migrations.
func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := db.AutoMigrate(
		&model.Contract{},
		&model.ContractClause{},
		&model.ContractRisk{},
		&model.Report{},
		&model.KPI{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	slog.Info("database connected", "driver", cfg.Driver)
	return db, nil
}

// ContractFilter holds the equality filters supported by List.
type ContractFilter struct {
	Status string
	Type   string
}

// ContractRepo wraps all database access for contracts and their owned
// clause/risk records.
type ContractRepo struct {
	db *gorm.DB
}

func NewContractRepo(db *gorm.DB) *ContractRepo {
	return &ContractRepo{db: db}
}

// CreateWithChildren inserts a contract together with its clause and risk
// rows in one transaction. Any failure aborts the whole write: readers
// never observe a contract without its children.
func (r *ContractRepo) CreateWithChildren(ctx context.Context, contract *model.Contract, clauses []model.ContractClause, risks []model.ContractRisk) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(contract).Error; err != nil {
			return fmt.Errorf("failed to create contract: %w", err)
		}

		for i := range clauses {
			clauses[i].ContractID = contract.ID
		}
		if len(clauses) > 0 {
			if err := tx.Create(&clauses).Error; err != nil {
				return fmt.Errorf("failed to create clauses: %w", err)
			}
		}

		for i := range risks {
			risks[i].ContractID = contract.ID
		}
		if len(risks) > 0 {
			if err := tx.Create(&risks).Error; err != nil {
				return fmt.Errorf("failed to create risks: %w", err)
			}
		}

		return nil
	})
}

// GetByID returns a contract with its clauses and risks preloaded.
func (r *ContractRepo) GetByID(ctx context.Context, id string) (*model.Contract, error) {
	var contract model.Contract
	err := r.db.WithContext(ctx).
		Preload("Clauses").
		Preload("Risks").
		Where("id = ?", id).
		First(&contract).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

// List returns contracts matching the filter, newest first.
func (r *ContractRepo) List(ctx context.Context, filter *ContractFilter) ([]model.Contract, error) {
	tx := r.db.WithContext(ctx).Model(&model.Contract{})
	if filter != nil {
		if filter.Status != "" {
			tx = tx.Where("status = ?", filter.Status)
		}
		if filter.Type != "" {
			tx = tx.Where("type = ?", filter.Type)
		}
	}

	var contracts []model.Contract
	err := tx.Order("created_at DESC").Find(&contracts).Error
	return contracts, err
}

// Delete removes a contract and its children. The explicit child deletes
// keep cascade semantics on sqlite, where foreign key enforcement is off
// by default.
func (r *ContractRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("contract_id = ?", id).Delete(&model.ContractClause{}).Error; err != nil {
			return err
		}
		if err := tx.Where("contract_id = ?", id).Delete(&model.ContractRisk{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&model.Contract{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// Count returns the number of contracts, optionally restricted to one
// status.
func (r *ContractRepo) Count(ctx context.Context, status string) (int64, error) {
	tx := r.db.WithContext(ctx).Model(&model.Contract{})
	if status != "" {
		tx = tx.Where("status = ?", status)
	}
	var count int64
	err := tx.Count(&count).Error
	return count, err
}

// ExpireContracts marks active contracts past their expiration date as
// expired. Used by the nightly sweep.
func (r *ContractRepo) ExpireContracts(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Contract{}).
		Where("status = ? AND expiration_date IS NOT NULL AND expiration_date < ?", model.StatusActive, now).
		Update("status", model.StatusExpired)
	return result.RowsAffected, result.Error
}

// MarkPendingRenewal marks active contracts whose renewal date has passed
// but that have not yet expired.
func (r *ContractRepo) MarkPendingRenewal(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Contract{}).
		Where("status = ? AND renewal_date IS NOT NULL AND renewal_date < ?", model.StatusActive, now).
		Where("expiration_date IS NULL OR expiration_date >= ?", now).
		Update("status", model.StatusPendingRenewal)
	return result.RowsAffected, result.Error
}
