package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/subloop/reconciler/internal/app/service/forwarder"
	"github.com/subloop/reconciler/internal/app/service/notification"
	"github.com/subloop/reconciler/pkg/logctx"
	"github.com/subloop/reconciler/pkg/response"
)

type NotifyResponse struct {
	OrderID        string `json:"order_id"`
	Outcome        string `json:"outcome"`
	AlreadyApplied bool   `json:"already_applied"`
}

// ApiGatewayNotify handles the payment gateway's asynchronous outcome
// notification (form-encoded POST).
//
// Status codes follow the gateway's retry contract: it redelivers on
// non-2xx, so transient forwarding failures answer 503. Permanent failures
// (unusable payloads, signature mismatches, ledger rejections) answer 400
// or a 200 error envelope that stops redelivery.
func ApiGatewayNotify(h *notification.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logctx.FromGin(c, h.Logger)
		log.Infow("gateway_notify_received")

		if err := c.Request.ParseForm(); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, "unreadable form payload"))
			return
		}

		res, err := h.HandleDelivery(c.Request.Context(), c.Request.PostForm)
		if err != nil {
			var parseErr *notification.ParseError
			var authErr *notification.AuthenticityError
			switch {
			case errors.As(err, &parseErr):
				c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, parseErr.Error()))
			case errors.As(err, &authErr):
				// No detail beyond the rejection itself. Diagnostics are in
				// the logs for operator review.
				c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, "notification rejected"))
			case forwarder.IsTransient(err):
				c.JSON(http.StatusServiceUnavailable, response.ErrorT[any](response.APIResponseCodeError, "temporarily unable to process notification"))
			default:
				// Permanent processing failure: a 2xx stops the gateway
				// from redelivering something that can never succeed.
				log.Errorw("gateway_notify_permanent_failure", "error", err.Error())
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, "notification could not be processed"))
			}
			return
		}

		out := NotifyResponse{
			OrderID: res.Notification.OrderID,
			Outcome: string(res.Outcome),
		}
		if res.Reconciliation != nil {
			out.AlreadyApplied = res.Reconciliation.AlreadyApplied
		}
		log.Infow("gateway_notify_handled", "order_id", out.OrderID, "outcome", out.Outcome)
		c.JSON(http.StatusOK, response.OKT(out))
	}
}

func RegisterPaymentRoutes(r gin.IRouter, h *notification.Handler) {
	r.POST("/notify", ApiGatewayNotify(h))
}
