package controllers

import (
	"log"
	"net/http"

	"hotel-reservation/config"
	"hotel-reservation/models"
	"hotel-reservation/utils"

	"github.com/gin-gonic/gin"
)

// Catalog pass-throughs. Room and room-type management belongs to catalog
// administration; the reservation core only reads them, plus one narrow
// mutation: flipping a room's operational status.

func GetRooms(c *gin.Context) {
	var rooms []models.Room
	if err := config.DB.Preload("RoomType").Order("id ASC").Find(&rooms).Error; err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to retrieve rooms")
		return
	}

	utils.JSONSuccess(c, http.StatusOK, rooms)
}

// UpdateRoomStatus handles PATCH /api/rooms/:id/status. The operational flag
// is independent of booking occupancy; disabling a room hides it from the
// availability resolver without touching its reservations.
func UpdateRoomStatus(c *gin.Context) {
	var payload struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request payload"})
		return
	}
	if payload.Status != models.RoomStatusAvailable && payload.Status != models.RoomStatusUnavailable {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "status must be available or unavailable."})
		return
	}

	id := c.Param("id")
	result := config.DB.Model(&models.Room{}).Where("id = ?", id).Update("status", payload.Status)
	if result.Error != nil {
		log.Printf("❌ Update room %s status error: %v", id, result.Error)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Update failed"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Room not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Room status updated"})
}
