package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/pos-app/kds"
	"github.com/yeremiapane/pos-app/models"
	"github.com/yeremiapane/pos-app/utils"
	"gorm.io/gorm"
)

var errTableBooked = errors.New("table is already booked")

type OrderController struct {
	DB  *gorm.DB
	Hub *kds.Hub
}

func NewOrderController(db *gorm.DB, hub *kds.Hub) *OrderController {
	return &OrderController{DB: db, Hub: hub}
}

type orderItemRequest struct {
	Name     string  `json:"name" binding:"required"`
	Quantity int     `json:"quantity" binding:"required,min=1"`
	Price    float64 `json:"price" binding:"min=0"`
}

// CreateOrder stores an order with its items and bills. When a table is given it
// must be available and becomes booked by the new order.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req struct {
		CustomerName  string             `json:"customer_name" binding:"required"`
		CustomerPhone string             `json:"customer_phone"`
		Guests        int                `json:"guests"`
		TableID       *uint              `json:"table_id"`
		Items         []orderItemRequest `json:"items" binding:"required,min=1,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, models.OrderItem{Name: it.Name, Quantity: it.Quantity, Price: it.Price})
	}
	order := models.Order{
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Guests:        req.Guests,
		Status:        models.OrderStatusInProgress,
		Bills:         models.ComputeBills(items),
		TableID:       req.TableID,
		Items:         items,
	}
	if order.Guests <= 0 {
		order.Guests = 1
	}

	var table *models.Table
	err := oc.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if order.TableID != nil {
			var t models.Table
			if err := tx.First(&t, *order.TableID).Error; err != nil {
				return fmt.Errorf("failed to find table: %w", err)
			}
			if t.Status == models.TableStatusBooked {
				return errTableBooked
			}
			table = &t
		}

		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		if table != nil {
			table.Status = models.TableStatusBooked
			table.CurrentOrderID = &order.ID
			if err := tx.Save(table).Error; err != nil {
				return fmt.Errorf("failed to book table: %w", err)
			}
		}
		return nil
	})
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
		return
	case errors.Is(err, errTableBooked):
		utils.RespondError(c, http.StatusConflict, err)
		return
	case err != nil:
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	oc.Hub.Broadcast(kds.Message{Event: kds.EventOrderUpdate, Data: order})
	if table != nil {
		oc.Hub.Broadcast(kds.Message{Event: kds.EventTableUpdate, Data: table})
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id": order.ID,
		"total":    order.Bills.TotalWithTax,
	}).Info("order created")
	utils.RespondJSON(c, http.StatusCreated, "Order created successfully", order)
}

// GetAllOrders lists orders newest first, optionally filtered by ?status=.
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	query := oc.DB.WithContext(c.Request.Context()).Preload("Items").Order("created_at desc")
	if status := c.Query("status"); status != "" {
		if !models.ValidOrderStatus(status) {
			utils.RespondError(c, http.StatusBadRequest, errors.New("invalid order status"))
			return
		}
		query = query.Where("status = ?", status)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

func (oc *OrderController) GetOrderByID(c *gin.Context) {
	var order models.Order
	if err := oc.DB.WithContext(c.Request.Context()).Preload("Items").First(&order, c.Param("id")).Error; err != nil {
		respondLookupError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// UpdateOrderStatus moves an order along. Completing it frees its table.
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if !models.ValidOrderStatus(body.Status) {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid order status"))
		return
	}

	var (
		order models.Order
		freed *models.Table
	)
	err := oc.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&order, c.Param("id")).Error; err != nil {
			return err
		}
		order.Status = body.Status
		if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).Update("status", order.Status).Error; err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}

		if order.Status != models.OrderStatusCompleted || order.TableID == nil {
			return nil
		}
		var t models.Table
		err := tx.Where("id = ? AND current_order_id = ?", *order.TableID, order.ID).First(&t).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		t.Status = models.TableStatusAvailable
		t.CurrentOrderID = nil
		if err := tx.Save(&t).Error; err != nil {
			return fmt.Errorf("failed to free table: %w", err)
		}
		freed = &t
		return nil
	})
	if err != nil {
		respondLookupError(c, err)
		return
	}

	oc.Hub.Broadcast(kds.Message{Event: kds.EventOrderUpdate, Data: order})
	if freed != nil {
		oc.Hub.Broadcast(kds.Message{Event: kds.EventTableUpdate, Data: freed})
	}

	utils.InfoLogger.WithFields(logrus.Fields{"order_id": order.ID, "status": order.Status}).Info("order status changed")
	utils.RespondJSON(c, http.StatusOK, "Order status updated", order)
}
