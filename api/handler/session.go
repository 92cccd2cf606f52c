package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/facturapro/sessiond/api/transport"
	"github.com/facturapro/sessiond/domain"
	"github.com/facturapro/sessiond/pkg/authz"
	"github.com/facturapro/sessiond/pkg/httpcontext"
	sessionUC "github.com/facturapro/sessiond/usecase/session"
)

type SessionHandler struct {
	baseHandler
	manager *sessionUC.Manager
}

func NewSessionHandler(manager *sessionUC.Manager, adapter *httpcontext.Adapter, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		baseHandler: newBaseHandler(adapter, logger),
		manager:     manager,
	}
}

// @Summary Current session snapshot
// @Tags session
// @Router /api/v1/session [get]
func (h *SessionHandler) Get(ctx *fasthttp.RequestCtx) {
	h.respondSuccess(ctx, http.StatusOK, transport.NewSessionPayload(h.manager.Session()))
}

// @Summary Allow/deny decision for a capability or minimum role
// @Tags session
// @Router /api/v1/authorize [get]
func (h *SessionHandler) Authorize(ctx *fasthttp.RequestCtx) {
	capParam := string(ctx.QueryArgs().Peek("capability"))
	roleParam := string(ctx.QueryArgs().Peek("min_role"))

	session := h.manager.Session()

	switch {
	case capParam != "":
		capability, ok := domain.ParseCapability(capParam)
		if !ok {
			h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "unknown capability", nil))
			return
		}
		h.respondSuccess(ctx, http.StatusOK, transport.AuthorizeResponse{
			Allowed: authz.Allowed(session, capability),
		})
	case roleParam != "":
		role := domain.Role(roleParam)
		if !role.Valid() {
			h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "unknown role", nil))
			return
		}
		h.respondSuccess(ctx, http.StatusOK, transport.AuthorizeResponse{
			Allowed: authz.AllowedRole(session, role),
		})
	default:
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "capability or min_role is required", nil))
	}
}
