package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"

	"FACEGATE/config"
	"FACEGATE/models"
)

// RequireCompany validates the Bearer token and puts the authenticated company
// into the context as "currentCompany". Everything behind it is scoped to that
// company.
func RequireCompany() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Pull the token out of the Authorization header.
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authorization token required"})
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		// 2. Verify the signature and expiry.
		claims := &config.JWTClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return config.JWT_KEY, nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			return
		}

		// 3. The company must still exist.
		var company models.Company
		if err := models.DB.First(&company, claims.CompanyId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Company no longer exists"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Error loading company"})
			return
		}

		c.Set("currentCompany", company)
		c.Next()
	}
}

// CurrentCompany reads the authenticated company set by RequireCompany.
func CurrentCompany(c *gin.Context) models.Company {
	value, _ := c.Get("currentCompany")
	company, _ := value.(models.Company)
	return company
}
