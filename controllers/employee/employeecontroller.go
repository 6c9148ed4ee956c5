package employee

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"FACEGATE/extractor"
	"FACEGATE/gallery"
	"FACEGATE/middleware"
	"FACEGATE/models"
)

// Controller handles employee enrollment. It needs the extractor to turn the
// enrollment photo into a descriptor and the gallery cache to invalidate the
// scope afterwards.
type Controller struct {
	extractor extractor.Extractor
	cache     *gallery.Cache
}

func NewController(ex extractor.Extractor, cache *gallery.Cache) *Controller {
	return &Controller{extractor: ex, cache: cache}
}

type AddPayload struct {
	Name    string `json:"name" binding:"required"`
	Surname string `json:"surname" binding:"required"`
	GroupId int64  `json:"groupId" binding:"required"`
	Image   string `json:"image" binding:"required"`
}

// AddHandler creates an employee and their first face sample in one call.
func (ctl *Controller) AddHandler(c *gin.Context) {
	var payload AddPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Name, surname, groupId and image are required"})
		return
	}

	company := middleware.CurrentCompany(c)

	// 1. The group must belong to the caller's company.
	var group models.Group
	err := models.DB.Where("id = ? AND company_id = ?", payload.GroupId, company.Id).First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Group not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error saving employee"})
		return
	}

	// 2. Extract the descriptor before touching the store, so a bad photo
	// does not leave an employee without face data.
	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()
	descriptor, err := ctl.extractor.Extract(ctx, payload.Image)
	if errors.Is(err, extractor.ErrNoFace) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not extract face features"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error extracting face features"})
		return
	}

	raw, err := json.Marshal(descriptor)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error saving employee"})
		return
	}

	emp := models.Employee{
		Name:      payload.Name,
		Surname:   payload.Surname,
		CompanyId: company.Id,
		GroupId:   group.Id,
		Image:     payload.Image,
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&emp).Error; err != nil {
			return err
		}
		face := models.Face{EmployeeId: emp.Id, Descriptor: raw, Image: payload.Image}
		return tx.Create(&face).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error saving employee with face"})
		return
	}

	// 3. New descriptors must be visible to running sessions.
	ctl.cache.Invalidate(company.Id, group.Id)

	c.JSON(http.StatusCreated, gin.H{"message": "Employee and face saved successfully", "employee": emp})
}

// ListHandler returns the company's employees with their group.
func (ctl *Controller) ListHandler(c *gin.Context) {
	company := middleware.CurrentCompany(c)

	var employees []models.Employee
	err := models.DB.Preload("Group").Where("company_id = ?", company.Id).Find(&employees).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error fetching employees"})
		return
	}

	c.JSON(http.StatusOK, employees)
}
