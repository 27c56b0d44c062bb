package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/subloop/reconciler/internal/app/service/presenter"
	"github.com/subloop/reconciler/pkg/response"
)

// ApiCheckoutStatus serves the presentation state of one checkout to the
// polling user agent: current state, the scheduled redirect if any, and the
// manual return route for outcomes that never auto-navigate.
func ApiCheckoutStatus(reg *presenter.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Param("order_id")
		p := reg.Get(orderID)
		if p == nil {
			c.JSON(http.StatusNotFound, response.ErrorT[any](response.APIResponseCodeBadRequest, "unknown checkout"))
			return
		}
		c.JSON(http.StatusOK, response.OKT(p.Snapshot()))
	}
}

func RegisterCheckoutRoutes(r gin.IRouter, reg *presenter.Registry) {
	r.GET("/checkout/:order_id", ApiCheckoutStatus(reg))
}
