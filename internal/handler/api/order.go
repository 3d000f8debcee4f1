package api

import (
	"errors"
	"net/http"

	reqdto "keypanel/internal/handler/dto/request"
	resdto "keypanel/internal/handler/dto/response"
	"keypanel/internal/usecase/commands"
	"keypanel/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orderCommands commands.OrderCommands
	orderQueries  queries.OrderQueries
}

func NewOrderHandler(orderCommands commands.OrderCommands, orderQueries queries.OrderQueries) *OrderHandler {
	return &OrderHandler{
		orderCommands: orderCommands,
		orderQueries:  orderQueries,
	}
}

// @Summary Create order
// @Description Redeem a key against a service and dispatch the order to the provider
// @Tags orders
// @Accept json
// @Produce json
// @Param request body reqdto.CreateOrderRequest true "Order request"
// @Success 201 {object} resdto.CreateOrderResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req reqdto.CreateOrderRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	input := commands.CreateOrderInput{
		KeyValue:  req.Key,
		ServiceID: req.ServiceID,
		Quantity:  req.Quantity,
		Link:      req.Link,
	}

	result, err := h.orderCommands.CreateOrder(c.Request.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrInvalidKey):
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired key",
			})
		case errors.Is(err, commands.ErrQuotaExhausted):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Key quota exhausted",
			})
		case errors.Is(err, commands.ErrQuotaExceeded):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Requested quantity exceeds remaining quota",
			})
		case errors.Is(err, commands.ErrKeyServiceMismatch):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Key is not valid for this service",
			})
		case errors.Is(err, commands.ErrServiceUnavailable):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Service unavailable",
			})
		case errors.Is(err, commands.ErrQuantityOutOfRange):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Quantity out of range for this service",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, resdto.FromCreateOrderResult(result))
}

// @Summary Get order status
// @Description Get the compact status view of an order
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} resdto.OrderStatusResponse
// @Failure 404 {object} map[string]string
// @Router /orders/{id}/status [get]
func (h *OrderHandler) GetStatus(c *gin.Context) {
	orderID := c.Param("id")

	view, err := h.orderQueries.GetStatus(c.Request.Context(), orderID)
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Order not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromOrderView(view))
}

// @Summary Search order
// @Description Get the full order view, refreshing provider status for live orders
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} resdto.OrderDetailResponse
// @Failure 404 {object} map[string]string
// @Router /orders/{id} [get]
func (h *OrderHandler) SearchOrder(c *gin.Context) {
	orderID := c.Param("id")

	view, err := h.orderQueries.Search(c.Request.Context(), orderID)
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Order not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromOrderDetailView(view))
}
