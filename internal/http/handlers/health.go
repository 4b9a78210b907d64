package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dailyfocus/dailyfocus-backend/internal/http/response"
)

type HealthHandler struct {
	db      *gorm.DB
	started time.Time
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db, started: time.Now()}
}

func (hh *HealthHandler) HealthCheck(c *gin.Context) {
	dbStatus := "ok"
	if sqlDB, err := hh.db.DB(); err != nil {
		dbStatus = "error"
	} else if err := sqlDB.Ping(); err != nil {
		dbStatus = "error"
	}

	response.RespondOK(c, gin.H{
		"status":        "ok",
		"db":            dbStatus,
		"uptimeSeconds": int(time.Since(hh.started).Seconds()),
	})
}
