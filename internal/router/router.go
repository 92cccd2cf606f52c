package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/facturapro/sessiond/api/handler"
)

type Handlers struct {
	Auth     *apiHandler.AuthHandler
	Session  *apiHandler.SessionHandler
	Accounts *apiHandler.AccountsHandler
	Health   *apiHandler.HealthHandler
}

func New(handlers Handlers, manageUsers func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Session lifecycle
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/demo", handlers.Auth.Demo)
	r.POST("/api/v1/auth/logout", handlers.Auth.Logout)

	// Read-only session surface
	r.GET("/api/v1/session", handlers.Session.Get)
	r.GET("/api/v1/authorize", handlers.Session.Authorize)

	// Operator-only
	r.GET("/api/v1/accounts", manageUsers(handlers.Accounts.List))

	return r
}
