package controllers

import (
	"net/http"

	"hotel-reservation/config"
	"hotel-reservation/models"
	"hotel-reservation/utils"

	"github.com/gin-gonic/gin"
)

func GetRoomTypes(c *gin.Context) {
	var types []models.RoomType
	if err := config.DB.Find(&types).Error; err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to retrieve room types")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, types)
}
