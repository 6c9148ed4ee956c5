package group

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"FACEGATE/middleware"
	"FACEGATE/models"
)

type CreatePayload struct {
	Name string `json:"name" binding:"required"`
}

// CreateHandler adds a group under the authenticated company.
func CreateHandler(c *gin.Context) {
	var payload CreatePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Group name is required"})
		return
	}

	company := middleware.CurrentCompany(c)
	group := models.Group{Name: payload.Name, CompanyId: company.Id}
	if err := models.DB.Create(&group).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error creating group"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Group created successfully", "group": group})
}

// ListHandler returns the company's groups.
func ListHandler(c *gin.Context) {
	company := middleware.CurrentCompany(c)

	var groups []models.Group
	if err := models.DB.Where("company_id = ?", company.Id).Find(&groups).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error fetching groups"})
		return
	}

	c.JSON(http.StatusOK, groups)
}
