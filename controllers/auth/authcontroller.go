package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"FACEGATE/config"
	"FACEGATE/models"
)

type RegisterPayload struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginPayload struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterHandler creates a new company account.
func RegisterHandler(c *gin.Context) {
	var payload RegisterPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Name, email and password are required: " + err.Error()})
		return
	}

	var existing models.Company
	err := models.DB.Where("email = ?", payload.Email).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email already registered"})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error registering company"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error registering company"})
		return
	}

	company := models.Company{Name: payload.Name, Email: payload.Email, Password: string(hash)}
	if err := models.DB.Create(&company).Error; err != nil {
		// A concurrent register can pass the lookup above and lose the race
		// to the unique index; that is still just a duplicate email.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Email already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error registering company"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Company registered successfully"})
}

// LoginHandler checks credentials and issues a company token valid for one day.
func LoginHandler(c *gin.Context) {
	var payload LoginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password are required"})
		return
	}

	var company models.Company
	err := models.DB.Where("email = ?", payload.Email).First(&company).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Same answer as a wrong password so accounts cannot be enumerated.
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid email or password"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error logging in"})
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(company.Password), []byte(payload.Password)) != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid email or password"})
		return
	}

	claims := config.JWTClaims{
		CompanyId: company.Id,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(config.JWT_KEY)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error logging in"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":     token,
		"companyId": company.Id,
		"name":      company.Name,
	})
}
