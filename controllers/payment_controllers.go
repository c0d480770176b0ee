package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/yeremiapane/pos-app/kds"
	"github.com/yeremiapane/pos-app/services"
	"github.com/yeremiapane/pos-app/utils"
)

type PaymentController struct {
	Payments *services.PaymentService
	Hub      *kds.Hub
}

func NewPaymentController(payments *services.PaymentService, hub *kds.Hub) *PaymentController {
	return &PaymentController{Payments: payments, Hub: hub}
}

// GetAllPayments lists payments, optionally for one order via ?order_id=.
func (pc *PaymentController) GetAllPayments(c *gin.Context) {
	var orderID uint64
	if raw := c.Query("order_id"); raw != "" {
		var err error
		orderID, err = strconv.ParseUint(raw, 10, 64)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("invalid order_id"))
			return
		}
	}

	payments, err := pc.Payments.ListPayments(c.Request.Context(), uint(orderID))
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All payments", payments)
}

// CreatePayment records a payment taken against an order.
func (pc *PaymentController) CreatePayment(c *gin.Context) {
	var body struct {
		OrderID uint    `json:"order_id" binding:"required"`
		Amount  float64 `json:"amount" binding:"required"`
		Method  string  `json:"method" binding:"required"` // cash, online
		Email   string  `json:"email"`
		Contact string  `json:"contact"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	payment, err := pc.Payments.RecordPayment(c.Request.Context(), services.PaymentInput{
		OrderID: body.OrderID,
		Amount:  body.Amount,
		Method:  body.Method,
		Email:   body.Email,
		Contact: body.Contact,
	})
	switch {
	case errors.Is(err, services.ErrInvalidPayment):
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	case errors.Is(err, gorm.ErrRecordNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
		return
	case err != nil:
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	pc.Hub.Broadcast(kds.Message{Event: kds.EventPaymentUpdate, Data: payment})
	utils.InfoLogger.WithFields(logrus.Fields{
		"payment_ref": payment.PaymentRef,
		"order_id":    payment.OrderID,
		"amount":      payment.Amount,
	}).Info("payment recorded")
	utils.RespondJSON(c, http.StatusCreated, "Payment recorded", payment)
}

func (pc *PaymentController) GetPaymentByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid payment id"))
		return
	}

	payment, err := pc.Payments.GetPaymentByID(c.Request.Context(), uint(id))
	if err != nil {
		respondLookupError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Payment detail", payment)
}
