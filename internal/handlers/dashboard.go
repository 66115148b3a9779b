package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/taskflow-dev/taskflow/db"
	"github.com/taskflow-dev/taskflow/internal/activity"
	"github.com/taskflow-dev/taskflow/internal/utils"
)

func GetDashboardStats(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	stats, err := activity.UserStats(db.DB, userID)

	if err != nil {
		log.Printf("Failed to compute dashboard stats: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, stats)
}

func GetRecentActivity(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", "10"))

	if err != nil || limit <= 0 {
		limit = 10
	}

	records, err := activity.Recent(db.DB, userID, limit)

	if err != nil {
		log.Printf("Failed to build activity feed: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, records)
}
