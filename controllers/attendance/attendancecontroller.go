package attendance

import (
	"encoding/csv"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"FACEGATE/ledger"
	"FACEGATE/middleware"
	"FACEGATE/models"
)

// Controller exposes the attendance ledger over REST. The automatic entry
// path lives in the realtime gateway; these endpoints are for manual entry,
// exit and reporting.
type Controller struct {
	ledger *ledger.Ledger
}

func NewController(led *ledger.Ledger) *Controller {
	return &Controller{ledger: led}
}

type EntryPayload struct {
	EmployeeId int64 `json:"employeeId"`
}

// EntryHandler records today's entry for an employee of the caller's company.
// Repeating the call returns the existing record unchanged.
func (ctl *Controller) EntryHandler(c *gin.Context) {
	var payload EntryPayload
	if err := c.ShouldBindJSON(&payload); err != nil || payload.EmployeeId == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Employee ID is required"})
		return
	}

	company := middleware.CurrentCompany(c)

	var emp models.Employee
	err := models.DB.Where("id = ? AND company_id = ?", payload.EmployeeId, company.Id).First(&emp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Employee not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error recording entry"})
		return
	}

	rec, _, err := ctl.ledger.RecordEntryIfAbsent(emp.Id, emp.GroupId, emp.CompanyId, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error recording entry"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Entry recorded", "attendance": rec})
}

// ExitHandler closes the employee's most recent open record.
func (ctl *Controller) ExitHandler(c *gin.Context) {
	var payload EntryPayload
	if err := c.ShouldBindJSON(&payload); err != nil || payload.EmployeeId == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Employee ID is required"})
		return
	}

	company := middleware.CurrentCompany(c)

	var emp models.Employee
	err := models.DB.Where("id = ? AND company_id = ?", payload.EmployeeId, company.Id).First(&emp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Employee not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error recording exit"})
		return
	}

	rec, err := ctl.ledger.RecordExit(emp.Id, time.Now())
	if errors.Is(err, ledger.ErrNoActiveEntry) {
		c.JSON(http.StatusNotFound, gin.H{"message": "No active entry found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error recording exit"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Exit recorded", "attendance": rec})
}

// ListHandler returns the company's records, newest first.
func (ctl *Controller) ListHandler(c *gin.Context) {
	company := middleware.CurrentCompany(c)

	recs, err := ctl.ledger.ListByCompany(company.Id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error fetching attendance"})
		return
	}

	c.JSON(http.StatusOK, recs)
}

// ExportHandler streams the company's records as CSV.
func (ctl *Controller) ExportHandler(c *gin.Context) {
	company := middleware.CurrentCompany(c)

	recs, err := ctl.ledger.ListByCompany(company.Id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error exporting attendance"})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="attendance.csv"`)

	w := csv.NewWriter(c.Writer)
	w.Write([]string{"Name", "Surname", "Group", "Entry Time", "Exit Time", "Date"})
	for _, rec := range recs {
		name, surname, group := "", "", ""
		if rec.Employee != nil {
			name, surname = rec.Employee.Name, rec.Employee.Surname
		}
		if rec.Group != nil {
			group = rec.Group.Name
		}
		exit := ""
		if rec.ExitTime != nil {
			exit = rec.ExitTime.Format(time.RFC3339)
		}
		w.Write([]string{
			name,
			surname,
			group,
			rec.EntryTime.Format(time.RFC3339),
			exit,
			rec.AttendDate,
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		// Headers are already on the wire; all that is left is to not
		// pretend the export completed.
		log.Printf("attendance: csv export aborted for company %d: %v", company.Id, err)
	}
}
