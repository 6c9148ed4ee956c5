package models

import "time"

// Attendance is one daily record per employee. The unique index on
// (employee_id, attend_date) is what makes concurrent entry attempts collapse
// to a single row at the store.
type Attendance struct {
	Id         int64      `gorm:"primaryKey" json:"id"`
	EmployeeId int64      `gorm:"uniqueIndex:idx_employee_date" json:"employee_id"`
	GroupId    int64      `gorm:"index" json:"group_id"`
	CompanyId  int64      `gorm:"index" json:"company_id"`
	AttendDate string     `gorm:"type:date;uniqueIndex:idx_employee_date" json:"date"`
	EntryTime  time.Time  `json:"entry_time"`
	ExitTime   *time.Time `json:"exit_time,omitempty"` // nil while the record is open
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`

	Employee *Employee `gorm:"foreignKey:EmployeeId" json:"employee,omitempty"`
	Group    *Group    `gorm:"foreignKey:GroupId" json:"group,omitempty"`
}

func (Attendance) TableName() string {
	return "attendances"
}

// Open reports whether the record still has no exit time.
func (a *Attendance) Open() bool {
	return a.ExitTime == nil
}
