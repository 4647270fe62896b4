package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	cartsvc "storefront/internal/service/cart"
)

type cartResponse struct {
	Cart *domain.Cart `json:"cart"`
}

func getCartHandler(svc cartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := svc.Get(c.Request.Context(), sessionFrom(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, cartResponse{Cart: cart})
	}
}

type addItemRequest struct {
	ProductID string            `json:"productId" binding:"required"`
	Quantity  int               `json:"quantity" binding:"required"`
	Options   map[string]string `json:"options"`
}

func addItemHandler(svc cartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "productId and quantity are required"})
			return
		}
		cart, err := svc.AddItem(c.Request.Context(), sessionFrom(c), cartsvc.AddItemInput{
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
			Options:   domain.OptionsFromSelections(req.Options),
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, cartResponse{Cart: cart})
	}
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

func updateQuantityHandler(svc cartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "quantity is required"})
			return
		}
		cart, err := svc.UpdateQuantity(c.Request.Context(), sessionFrom(c), c.Param("itemId"), req.Quantity)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, cartResponse{Cart: cart})
	}
}

func removeItemHandler(svc cartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := svc.RemoveItem(c.Request.Context(), sessionFrom(c), c.Param("itemId"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, cartResponse{Cart: cart})
	}
}

func clearCartHandler(svc cartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := svc.Clear(c.Request.Context(), sessionFrom(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, cartResponse{Cart: cart})
	}
}

func toggleSelectHandler(svc cartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := svc.ToggleSelect(c.Request.Context(), sessionFrom(c), c.Param("itemId"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, cartResponse{Cart: cart})
	}
}

type selectAllRequest struct {
	Selected *bool `json:"selected" binding:"required"`
}

func selectAllHandler(svc cartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req selectAllRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "selected is required"})
			return
		}
		cart, err := svc.SelectAll(c.Request.Context(), sessionFrom(c), *req.Selected)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, cartResponse{Cart: cart})
	}
}

func checkoutHandler(svc cartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := svc.CompleteCheckout(c.Request.Context(), sessionFrom(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, cartResponse{Cart: cart})
	}
}

type mergeRequest struct {
	AnonymousID string `json:"anonymousId" binding:"required"`
}

// mergeCartHandler replays the anonymous cart into the freshly authenticated
// customer's remote cart and revokes the anonymous session afterwards.
func mergeCartHandler(svc cartService, anon anonymousService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessionFrom(c)
		if !sess.Authenticated {
			c.JSON(http.StatusForbidden, gin.H{"error": "login required"})
			return
		}
		var req mergeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "anonymousId is required"})
			return
		}
		cart, err := svc.MergeOnLogin(c.Request.Context(), req.AnonymousID, sess.OwnerID)
		if err != nil {
			writeError(c, err)
			return
		}
		anon.Revoke(c.Request.Context(), req.AnonymousID)
		c.JSON(http.StatusOK, cartResponse{Cart: cart})
	}
}
