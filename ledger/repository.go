package ledger

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"FACEGATE/models"
)

// GormRepository implements Repository on the MySQL record store.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// CreateIfAbsent relies on the unique index over (employee_id, attend_date):
// the conflict clause turns a duplicate insert into a no-op at the store, so
// concurrent entries for the same employee and date collapse to one row
// without any in-process locking.
func (r *GormRepository) CreateIfAbsent(rec *models.Attendance) (bool, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "employee_id"}, {Name: "attend_date"}},
		DoNothing: true,
	}).Create(rec)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}

func (r *GormRepository) FindByDate(employeeId int64, date string) (*models.Attendance, error) {
	var rec models.Attendance
	err := r.db.Where("employee_id = ? AND attend_date = ?", employeeId, date).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *GormRepository) FindOpenEntry(employeeId int64) (*models.Attendance, error) {
	var rec models.Attendance
	err := r.db.
		Where("employee_id = ? AND exit_time IS NULL", employeeId).
		Order("entry_time desc").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *GormRepository) SetExit(rec *models.Attendance, at time.Time) error {
	if err := r.db.Model(rec).Update("exit_time", at).Error; err != nil {
		return err
	}
	rec.ExitTime = &at
	return nil
}

func (r *GormRepository) ListByCompany(companyId int64) ([]models.Attendance, error) {
	var recs []models.Attendance
	err := r.db.
		Preload("Employee").
		Preload("Group").
		Where("company_id = ?", companyId).
		Order("attend_date desc, entry_time desc").
		Find(&recs).Error
	return recs, err
}
