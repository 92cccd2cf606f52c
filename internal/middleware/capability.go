package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/facturapro/sessiond/api/transport"
	"github.com/facturapro/sessiond/domain"
	"github.com/facturapro/sessiond/pkg/authz"
	sessionUC "github.com/facturapro/sessiond/usecase/session"
)

// RequireCapability gates a route behind the authorization guard: the
// current session must hold the capability or the request ends with 403.
func RequireCapability(manager *sessionUC.Manager, capability domain.Capability, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			session := manager.Session()
			if !authz.Allowed(session, capability) {
				logger.Warn("capability denied",
					zap.String("capability", string(capability)),
					zap.String("status", string(session.Status)))
				ctx.Response.Header.SetContentType("application/json")
				ctx.SetStatusCode(http.StatusForbidden)
				body, _ := json.Marshal(transport.NewError(string(domain.ErrCodeForbidden), "capability required", nil))
				ctx.SetBody(body)
				return
			}
			next(ctx)
		}
	}
}
