package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/openresto/restaurant-orders/models"
	"github.com/openresto/restaurant-orders/utils"
)

type TableController struct {
	DB *gorm.DB
}

func NewTableController(db *gorm.DB) *TableController {
	return &TableController{DB: db}
}

func (tc *TableController) GetAllTables(c *gin.Context) {
	var tables []models.Table
	if err := tc.DB.Preload("Floor").Order("number asc").Find(&tables).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

// GetTableByNumber -> collaborator read used by customers scanning a table
// code; returns 404 on miss instead of an error payload surprise.
func (tc *TableController) GetTableByNumber(c *gin.Context) {
	number := c.Param("number")

	var table models.Table
	if err := tc.DB.Where("number = ?", number).First(&table).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, errors.New("table not found"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

func (tc *TableController) CreateTable(c *gin.Context) {
	type reqBody struct {
		Number   string `json:"number" binding:"required"`
		Capacity int    `json:"capacity" binding:"required,gt=0"`
		FloorID  *uint  `json:"floor_id"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table := models.Table{
		Number:      body.Number,
		Capacity:    body.Capacity,
		FloorID:     body.FloorID,
		IsAvailable: true,
	}
	if err := tc.DB.Create(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Table created", table)
}

func (tc *TableController) UpdateTable(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("table_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var table models.Table
	if err := tc.DB.First(&table, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	type reqBody struct {
		Number   *string `json:"number"`
		Capacity *int    `json:"capacity"`
		FloorID  *uint   `json:"floor_id"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if body.Number != nil {
		table.Number = *body.Number
	}
	if body.Capacity != nil {
		table.Capacity = *body.Capacity
	}
	if body.FloorID != nil {
		table.FloorID = body.FloorID
	}
	if err := tc.DB.Save(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table updated", table)
}

func (tc *TableController) DeleteTable(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("table_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	// Refuse to delete a table that still has an open order.
	var openOrders int64
	tc.DB.Model(&models.Order{}).
		Where("table_id = ? AND status <> ?", id, models.StatusPaid).
		Count(&openOrders)
	if openOrders > 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("table has open orders"))
		return
	}

	if err := tc.DB.Delete(&models.Table{}, id).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table deleted", gin.H{"table_id": id})
}
