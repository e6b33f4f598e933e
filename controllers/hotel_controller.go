package controllers

import (
	"net/http"

	"hotel-reservation/config"
	"hotel-reservation/models"
	"hotel-reservation/utils"

	"github.com/gin-gonic/gin"
)

func GetHotels(c *gin.Context) {
	var hotels []models.Hotel
	if err := config.DB.Find(&hotels).Error; err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to retrieve hotels")
		return
	}
	for i := range hotels {
		hotels[i].ImageURL = hotels[i].Image
	}
	utils.JSONSuccess(c, http.StatusOK, hotels)
}
