package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/facturapro/sessiond/internal/credstore"
	"github.com/facturapro/sessiond/pkg/httpcontext"
)

type AccountsHandler struct {
	baseHandler
	creds *credstore.Store
}

func NewAccountsHandler(creds *credstore.Store, adapter *httpcontext.Adapter, logger *zap.Logger) *AccountsHandler {
	return &AccountsHandler{
		baseHandler: newBaseHandler(adapter, logger),
		creds:       creds,
	}
}

// @Summary List fixture account handles (secret-free)
// @Tags accounts
// @Router /api/v1/accounts [get]
func (h *AccountsHandler) List(ctx *fasthttp.RequestCtx) {
	h.respondSuccess(ctx, http.StatusOK, h.creds.Accounts())
}
