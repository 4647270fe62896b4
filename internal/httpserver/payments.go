package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
)

type processPaymentRequest struct {
	OrderID string            `json:"orderId" binding:"required"`
	Method  string            `json:"paymentMethod" binding:"required"`
	Params  map[string]string `json:"params"`
}

func processPaymentHandler(svc paymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req processPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "orderId and paymentMethod are required"})
			return
		}
		params := req.Params
		if params == nil {
			params = map[string]string{}
		}
		if params["clientIp"] == "" {
			params["clientIp"] = c.ClientIP()
		}
		resp, err := svc.Initiate(c.Request.Context(), req.OrderID, domain.PaymentMethod(req.Method), params)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

func checkPaymentHandler(svc paymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := svc.Check(c.Request.Context(), c.Param("orderId"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

type bankQRRequest struct {
	BankID  string `json:"bankId" binding:"required"`
	OrderID string `json:"orderId" binding:"required"`
}

func bankQRHandler(svc paymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req bankQRRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bankId and orderId are required"})
			return
		}
		link, err := svc.BankQR(c.Request.Context(), req.BankID, req.OrderID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"qrImageUrl": link})
	}
}

func confirmPaymentHandler(svc paymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		payment, err := svc.Confirm(c.Request.Context(), c.Param("paymentId"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"payment": payment})
	}
}

func vnpayReturnHandler(svc paymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		payment, err := svc.HandleVNPayReturn(c.Request.Context(), c.Request.URL.Query())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"payment": payment})
	}
}

func momoReturnHandler(svc paymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		payment, err := svc.HandleMoMoReturn(c.Request.Context(), c.Request.URL.Query())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"payment": payment})
	}
}
