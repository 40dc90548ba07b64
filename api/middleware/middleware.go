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
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/didip/tollbooth/v7"
	"github.com/didip/tollbooth/v7/limiter"
	"github.com/gin-gonic/gin"

	"github.com/jerry-enebeli/bankbook/config"
	"github.com/jerry-enebeli/bankbook/internal/apierror"
)

// KeyHeader carries the server secret when the API runs in secure mode.
const KeyHeader = "X-Bankbook-Key"

// RateLimitMiddleware throttles writes per client and target account, so a
// client hammering one account does not lock it out of the others. Reads
// are never throttled. Without both a rate and a burst it passes everything.
func RateLimitMiddleware(conf *config.Configuration) gin.HandlerFunc {
	limits := conf.RateLimit
	if limits.RequestsPerSecond == nil || limits.Burst == nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	expiry := time.Duration(config.DEFAULT_RATE_LIMIT_CLEANUP_SECS) * time.Second
	if limits.CleanupIntervalSec != nil {
		expiry = time.Duration(*limits.CleanupIntervalSec) * time.Second
	}
	writes := tollbooth.NewLimiter(*limits.RequestsPerSecond, &limiter.ExpirableOptions{
		DefaultExpirationTTL: expiry,
	})
	writes.SetBurst(*limits.Burst)

	return func(c *gin.Context) {
		if isRead(c.Request.Method) {
			c.Next()
			return
		}
		if limited := tollbooth.LimitByKeys(writes, writeKeys(c)); limited != nil {
			c.Header("Retry-After", "1")
			abort(c, apierror.NewAPIError(apierror.ErrRateLimited, "Too many writes to this account, try again shortly.", nil))
			return
		}
		c.Next()
	}
}

func isRead(method string) bool {
	return method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions
}

// writeKeys buckets a write by client address and the account it targets.
// Opening an account targets none yet.
func writeKeys(c *gin.Context) []string {
	account := c.Param("number")
	if account == "" {
		account = "new"
	}
	return []string{c.ClientIP(), account}
}

// SecretKeyAuthMiddleware admits requests that present the server secret,
// either in KeyHeader or as a bearer token.
func SecretKeyAuthMiddleware(secretKey string) gin.HandlerFunc {
	want := []byte(secretKey)
	return func(c *gin.Context) {
		if len(want) == 0 {
			abort(c, apierror.NewAPIError(apierror.ErrInternalServer, "Secret key is not configured", nil))
			return
		}

		presented := presentedKey(c.Request)
		if presented == "" {
			abort(c, apierror.NewAPIError(apierror.ErrUnauthorized, "Missing secret key", nil))
			return
		}
		if subtle.ConstantTimeCompare(want, []byte(presented)) != 1 {
			abort(c, apierror.NewAPIError(apierror.ErrUnauthorized, "Invalid secret key", nil))
			return
		}

		c.Next()
	}
}

func presentedKey(r *http.Request) string {
	if key := r.Header.Get(KeyHeader); key != "" {
		return key
	}
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func abort(c *gin.Context, err apierror.APIError) {
	c.AbortWithStatusJSON(apierror.MapErrorToHTTPStatus(err), gin.H{"code": err.Code, "error": err.Message})
}
