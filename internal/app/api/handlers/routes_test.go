package handlers

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestRegisterRoutes_RegistersEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	payment := r.Group("/api/v1/payment")
	RegisterPaymentRoutes(payment, nil)
	RegisterCheckoutRoutes(payment, nil)

	admin := r.Group("/api/v1/admin")
	RegisterAdminRoutes(admin, nil)

	routes := r.Routes()
	contains := func(target string) bool {
		for _, rt := range routes {
			if rt.Method+" "+rt.Path == target {
				return true
			}
		}
		return false
	}

	require.True(t, contains("POST /api/v1/payment/notify"))
	require.True(t, contains("GET /api/v1/payment/checkout/:order_id"))
	require.True(t, contains("POST /api/v1/admin/reconciliation/list"))
	require.True(t, contains("GET /api/v1/admin/reconciliation/statistics"))
	require.True(t, contains("GET /api/v1/admin/subscription/:account_id"))
}
