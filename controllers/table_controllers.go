package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/pos-app/kds"
	"github.com/yeremiapane/pos-app/models"
	"github.com/yeremiapane/pos-app/utils"
	"gorm.io/gorm"
)

type TableController struct {
	DB  *gorm.DB
	Hub *kds.Hub
}

func NewTableController(db *gorm.DB, hub *kds.Hub) *TableController {
	return &TableController{DB: db, Hub: hub}
}

// CreateTable adds a new table to the floor.
func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		TableNo int    `json:"table_no" binding:"required,min=1"`
		Seats   int    `json:"seats"`
		Status  string `json:"status"` // optional, default "available"
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table := models.Table{
		TableNo: req.TableNo,
		Seats:   req.Seats,
		Status:  models.TableStatusAvailable,
	}
	if table.Seats <= 0 {
		table.Seats = 2
	}
	if req.Status != "" {
		if !models.ValidTableStatus(req.Status) {
			utils.RespondError(c, http.StatusBadRequest, errors.New("invalid table status"))
			return
		}
		table.Status = req.Status
	}

	var count int64
	if err := tc.DB.Model(&models.Table{}).Where("table_no = ?", table.TableNo).Count(&count).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if count > 0 {
		utils.RespondError(c, http.StatusConflict, errors.New("table number already exists"))
		return
	}

	if err := tc.DB.Create(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	tc.Hub.Broadcast(kds.Message{Event: kds.EventTableUpdate, Data: table})
	utils.InfoLogger.WithFields(logrus.Fields{"table_no": table.TableNo, "status": table.Status}).Info("table created")
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

func (tc *TableController) GetAllTables(c *gin.Context) {
	var tables []models.Table
	if err := tc.DB.Order("table_no").Find(&tables).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

// UpdateTable changes a table's status and the order currently seated at it.
// Freeing a table clears its current order.
func (tc *TableController) UpdateTable(c *gin.Context) {
	var body struct {
		Status         string `json:"status" binding:"required"`
		CurrentOrderID *uint  `json:"current_order_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if !models.ValidTableStatus(body.Status) {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid table status"))
		return
	}

	var table models.Table
	if err := tc.DB.First(&table, c.Param("id")).Error; err != nil {
		respondLookupError(c, err)
		return
	}

	table.Status = body.Status
	if body.Status == models.TableStatusAvailable {
		table.CurrentOrderID = nil
	} else if body.CurrentOrderID != nil {
		if err := tc.DB.First(&models.Order{}, *body.CurrentOrderID).Error; err != nil {
			respondLookupError(c, err)
			return
		}
		table.CurrentOrderID = body.CurrentOrderID
	}

	if err := tc.DB.Save(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	tc.Hub.Broadcast(kds.Message{Event: kds.EventTableUpdate, Data: table})
	utils.InfoLogger.WithFields(logrus.Fields{"table_id": table.ID, "status": table.Status}).Info("table updated")
	utils.RespondJSON(c, http.StatusOK, "Table updated", table)
}

// respondLookupError maps a failed First lookup to 404 or 500.
func respondLookupError(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondError(c, http.StatusInternalServerError, err)
}
