package realtime

import (
	"errors"

	"gorm.io/gorm"

	"FACEGATE/models"
)

// Scope is the (company, group) pair a session is bound to. It is fixed at
// connect time and never changes for the life of the session.
type Scope struct {
	CompanyId   int64
	GroupId     int64
	CompanyName string
	GroupName   string
}

var (
	ErrUnknownCompany = errors.New("unknown company")
	ErrUnknownGroup   = errors.New("unknown group")
)

// ScopeResolver maps routing names to a bound scope.
type ScopeResolver interface {
	Resolve(companyName, groupName string) (Scope, error)
}

// DBScopeResolver resolves scopes against the record store.
type DBScopeResolver struct {
	db *gorm.DB
}

func NewDBScopeResolver(db *gorm.DB) *DBScopeResolver {
	return &DBScopeResolver{db: db}
}

func (r *DBScopeResolver) Resolve(companyName, groupName string) (Scope, error) {
	var company models.Company
	err := r.db.Where("name = ?", companyName).First(&company).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Scope{}, ErrUnknownCompany
	}
	if err != nil {
		return Scope{}, err
	}

	var group models.Group
	err = r.db.Where("name = ? AND company_id = ?", groupName, company.Id).First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Scope{}, ErrUnknownGroup
	}
	if err != nil {
		return Scope{}, err
	}

	return Scope{
		CompanyId:   company.Id,
		GroupId:     group.Id,
		CompanyName: companyName,
		GroupName:   groupName,
	}, nil
}
