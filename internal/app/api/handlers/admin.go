package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/subloop/reconciler/internal/app/service/ledger"
	"github.com/subloop/reconciler/pkg/response"
)

// ApiListReconciliations serves the operator list page: filtered, sorted,
// paginated reconciliation rows.
func ApiListReconciliations(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ledger.ScanReconciliationsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		res, err := svc.ScanReconciliations(c.Request.Context(), &req)
		if err != nil {
			if errors.Is(err, ledger.ErrInvalidRequest) {
				c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
				return
			}
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// ApiOutcomeStatistics serves per-outcome counts and settled totals for the
// operator dashboard, including the charged-back bucket pending product
// decision on retroactive deactivation.
func ApiOutcomeStatistics(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := svc.OutcomeStatistics(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(stats))
	}
}

// ApiGetSubscription serves one account's subscription view for operator
// support lookups.
func ApiGetSubscription(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sub, err := svc.GetSubscription(c.Request.Context(), c.Param("account_id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(sub.Info()))
	}
}

func RegisterAdminRoutes(r gin.IRouter, svc *ledger.Service) {
	r.POST("/reconciliation/list", ApiListReconciliations(svc))
	r.GET("/reconciliation/statistics", ApiOutcomeStatistics(svc))
	r.GET("/subscription/:account_id", ApiGetSubscription(svc))
}
