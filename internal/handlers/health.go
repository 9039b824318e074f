package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HealthCheck reports whether the server is up and the store answers.
func HealthCheck(conn *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, message, code := "ok", "Taskdeck is running", http.StatusOK

		if sqlDB, err := conn.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			status, message, code = "degraded", "Database is unreachable", http.StatusServiceUnavailable
		}

		c.JSON(code, gin.H{
			"status":    status,
			"message":   message,
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}
