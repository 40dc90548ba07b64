/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/jerry-enebeli/bankbook"
	"github.com/jerry-enebeli/bankbook/api/middleware"
	"github.com/jerry-enebeli/bankbook/config"
	"github.com/jerry-enebeli/bankbook/internal/apierror"
	"github.com/jerry-enebeli/bankbook/internal/notification"
	"github.com/jerry-enebeli/bankbook/model"
)

type Api struct {
	ledger *bankbook.Ledger
	router *gin.Engine
}

func (a Api) Router() *gin.Engine {
	router := a.router
	router.POST("/accounts", a.OpenAccount)
	router.GET("/accounts", a.GetAllAccounts)
	router.GET("/accounts/:number", a.GetAccount)

	router.POST("/accounts/:number/transactions", a.RecordTransaction)
	router.GET("/accounts/:number/transactions", a.GetTransactions)
	router.POST("/accounts/:number/assessments", a.AssessInterestAndFees)
	return a.router
}

func NewAPI(ledger *bankbook.Ledger) *Api {
	gin.SetMode(gin.ReleaseMode)
	conf, err := config.Fetch()
	if err != nil {
		return nil
	}
	r := gin.Default()
	if conf.Tracing.Enabled {
		r.Use(otelgin.Middleware(conf.Tracing.ServiceName))
	}
	r.Use(middleware.RateLimitMiddleware(conf))
	if conf.Server.Secure {
		r.Use(middleware.SecretKeyAuthMiddleware(conf.Server.SecretKey))
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, "server running...")
	})

	return &Api{ledger: ledger, router: r}
}

func accountNumber(c *gin.Context) (int64, bool) {
	number, err := strconv.ParseInt(c.Param("number"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "account number must be an integer"})
		return 0, false
	}
	return number, true
}

// respondWithError writes err with the status its kind maps to. Rejections
// carry their structured fields; unexpected faults are reported without
// their cause.
func respondWithError(c *gin.Context, err error) {
	var overdraw *model.OverdrawError
	var limit *model.TransactionLimitError
	var sequence *model.TransactionSequenceError

	switch {
	case errors.As(err, &overdraw):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"code":    apierror.ErrRejected,
			"error":   "This transaction could not be completed due to an insufficient account balance.",
			"balance": overdraw.Balance.StringFixed(2),
			"floor":   overdraw.Floor.StringFixed(2),
		})
	case errors.As(err, &limit):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"code":       apierror.ErrRejected,
			"error":      err.Error(),
			"limit":      limit.Limit,
			"limit_type": limit.LimitType,
		})
	case errors.As(err, &sequence):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"code":        apierror.ErrRejected,
			"error":       err.Error(),
			"latest_date": sequence.LatestDate.Format(model.DateLayout),
		})
	default:
		status := apierror.MapErrorToHTTPStatus(err)
		if status == http.StatusInternalServerError {
			notification.NotifyError(err)
			c.JSON(status, gin.H{"code": apierror.ErrInternalServer, "error": "Sorry! Something unexpected happened."})
			return
		}
		var apiErr apierror.APIError
		errors.As(err, &apiErr)
		c.JSON(status, gin.H{"code": apiErr.Code, "error": apiErr.Message})
	}
}
