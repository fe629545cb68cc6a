package postgres

import (
	permissionDatamodel "github.com/frahmantamala/insight-pulse/internal/core/datamodel/permission"
	"gorm.io/gorm"
)

type PermissionRepository struct {
	db *gorm.DB
}

func NewPermissionRepository(db *gorm.DB) *PermissionRepository {
	return &PermissionRepository{db: db}
}

func (r *PermissionRepository) GetAll() ([]*permissionDatamodel.Permission, error) {
	var rows []*permissionDatamodel.Permission
	err := r.db.Order("from_dept_id, to_dept_id").Find(&rows).Error
	return rows, err
}

// ReplaceAll deletes every stored pair and inserts rows in one transaction.
func (r *PermissionRepository) ReplaceAll(rows []*permissionDatamodel.Permission) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&permissionDatamodel.Permission{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, 200).Error
	})
}
