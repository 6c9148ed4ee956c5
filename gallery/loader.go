package gallery

import (
	"encoding/json"
	"log"

	"gorm.io/gorm"

	"FACEGATE/models"
)

// DBLoader reads enrolled identities from the record store.
type DBLoader struct {
	db *gorm.DB
}

func NewDBLoader(db *gorm.DB) *DBLoader {
	return &DBLoader{db: db}
}

// LoadScope returns the identities of one (company, group) scope ordered by
// enrollment (primary key ascending). Face rows whose stored descriptor fails
// to decode or has the wrong dimension are skipped rather than poisoning the
// whole scope.
func (l *DBLoader) LoadScope(companyId, groupId int64) ([]Identity, error) {
	var employees []models.Employee
	err := l.db.
		Where("company_id = ? AND group_id = ?", companyId, groupId).
		Order("id asc").
		Find(&employees).Error
	if err != nil {
		return nil, err
	}
	if len(employees) == 0 {
		return nil, nil
	}

	ids := make([]int64, 0, len(employees))
	for _, e := range employees {
		ids = append(ids, e.Id)
	}

	var faces []models.Face
	err = l.db.
		Where("employee_id IN ?", ids).
		Order("id asc").
		Find(&faces).Error
	if err != nil {
		return nil, err
	}

	byEmployee := make(map[int64][][]float64, len(employees))
	for _, f := range faces {
		var vec []float64
		if err := json.Unmarshal(f.Descriptor, &vec); err != nil {
			log.Printf("gallery: skipping corrupt descriptor row %d: %v", f.Id, err)
			continue
		}
		if len(vec) != models.DescriptorSize {
			log.Printf("gallery: skipping descriptor row %d with dimension %d", f.Id, len(vec))
			continue
		}
		byEmployee[f.EmployeeId] = append(byEmployee[f.EmployeeId], vec)
	}

	identities := make([]Identity, 0, len(employees))
	for _, e := range employees {
		identities = append(identities, Identity{
			EmployeeId:  e.Id,
			Name:        e.Name + " " + e.Surname,
			Descriptors: byEmployee[e.Id],
		})
	}
	return identities, nil
}
