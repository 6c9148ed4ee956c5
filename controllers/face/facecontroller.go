package face

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

// Controller appends face samples to already-enrolled employees.
type Controller struct {
	extractor extractor.Extractor
	cache     *gallery.Cache
}

func NewController(ex extractor.Extractor, cache *gallery.Cache) *Controller {
	return &Controller{extractor: ex, cache: cache}
}

type AddPayload struct {
	EmployeeId int64  `json:"employeeId" binding:"required"`
	Image      string `json:"image" binding:"required"`
}

// AddHandler stores another sample for an existing employee. Always an INSERT,
// never an overwrite: one employee may keep several angles, and matching takes
// the closest one.
func (ctl *Controller) AddHandler(c *gin.Context) {
	var payload AddPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Employee ID and image are required"})
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
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error saving face data"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()
	descriptor, err := ctl.extractor.Extract(ctx, payload.Image)
	if errors.Is(err, extractor.ErrNoFace) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not extract features"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error extracting face features"})
		return
	}

	// The extractor client already checks the dimension; keep the guard here
	// anyway so a misconfigured extractor can never pollute the gallery.
	if len(descriptor) != models.DescriptorSize {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Face descriptor has the wrong dimension (must be 128)"})
		return
	}

	raw, err := json.Marshal(descriptor)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error saving face data"})
		return
	}

	newFace := models.Face{EmployeeId: emp.Id, Descriptor: raw, Image: payload.Image}
	if err := models.DB.Create(&newFace).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error saving face data"})
		return
	}

	ctl.cache.Invalidate(emp.CompanyId, emp.GroupId)

	c.JSON(http.StatusOK, gin.H{"message": "Face data saved successfully", "face": newFace})
}

// ListUsersHandler returns every enrolled face row for the company, decoded
// descriptors included.
func (ctl *Controller) ListUsersHandler(c *gin.Context) {
	company := middleware.CurrentCompany(c)

	var faces []models.Face
	err := models.DB.
		Joins("JOIN employees ON employees.id = faces.employee_id").
		Where("employees.company_id = ?", company.Id).
		Find(&faces).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error fetching faces"})
		return
	}

	for i := range faces {
		// Corrupt rows stay in the listing with a nil vector rather than
		// failing the whole response.
		_ = json.Unmarshal(faces[i].Descriptor, &faces[i].Vector)
	}

	c.JSON(http.StatusOK, faces)
}
