package controller

import (
	"course_risk_backend/internal/service"
	"course_risk_backend/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

type HealthController struct {
	DB        *gorm.DB
	Redis     *redis.Client
	MLService *service.MLService
}

func NewHealthController(db *gorm.DB, rdb *redis.Client, mlService *service.MLService) *HealthController {
	return &HealthController{DB: db, Redis: rdb, MLService: mlService}
}

// HealthCheck godoc
// @Summary Health check
// @Description Reports service, database, redis and ML estimator status
// @Tags system
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	sqlDB, err := c.DB.DB()
	if err != nil {
		util.InternalServerError(ctx)
		return
	}

	if err := sqlDB.Ping(); err != nil {
		util.Error(ctx, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	redisStatus := "up"
	if err := c.Redis.Ping(ctx.Request.Context()).Err(); err != nil {
		redisStatus = "down"
	}

	ml := "up"
	if status := c.MLService.Health(ctx.Request.Context()); status["status"] == "down" {
		ml = "down"
	}

	util.Success(ctx, gin.H{
		"status": "ok",
		"components": gin.H{
			"database": "up",
			"redis":    redisStatus,
			"ml":       ml,
		},
	})
}
