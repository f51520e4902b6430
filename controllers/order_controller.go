package controllers

import (
	"context"
	"fmt"
	"net/http"

	"commerce-service/middlewares"
	"commerce-service/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type OrderEngine interface {
	FindByID(ctx context.Context, id *models.Identity, orderID int64) (*models.Order, error)
	Insert(ctx context.Context, id *models.Identity, lines []models.OrderLine) (*models.Order, error)
	Transition(ctx context.Context, id *models.Identity, orderID int64, t models.OrderTransition) (*models.Order, error)
}

type OrderController struct {
	orders OrderEngine
	log    *logrus.Logger
}

func NewOrderController(orders OrderEngine, logger *logrus.Logger) *OrderController {
	return &OrderController{orders: orders, log: logger}
}

func (h *OrderController) CreateOrder(c *gin.Context) {
	defer middlewares.TrackOperation(c, "order_create")()

	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnf("Handler: invalid order body: %v", err)
		AbortWithError(c, fmt.Errorf("%w: %v", models.ErrInvalidInput, err))
		return
	}

	o, err := h.orders.Insert(c.Request.Context(), middlewares.IdentityFrom(c), req.Items)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Header("Location", fmt.Sprintf("/orders/%d", o.ID))
	c.JSON(http.StatusCreated, toOrderDTO(o))
}

func (h *OrderController) GetOrderDetails(c *gin.Context) {
	defer middlewares.TrackOperation(c, "order_details")()

	orderID, err := pathID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	o, err := h.orders.FindByID(c.Request.Context(), middlewares.IdentityFrom(c), orderID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderDTO(o))
}

func (h *OrderController) UpdateOrderStatus(c *gin.Context) {
	defer middlewares.TrackOperation(c, "order_update_status")()

	orderID, err := pathID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, fmt.Errorf("%w: %v", models.ErrInvalidInput, err))
		return
	}
	t, err := models.ParseOrderTransition(req.Event)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	o, err := h.orders.Transition(c.Request.Context(), middlewares.IdentityFrom(c), orderID, t)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderDTO(o))
}
