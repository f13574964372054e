package router

import (
	"github.com/freightcore/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// Handlers are the endpoint handlers of the API
type Handlers struct {
	Auth       *handler.AuthHandler
	Booking    *handler.BookingHandler
	Contract   *handler.RateContractHandler
	MasterData *handler.MasterDataHandler
	User       *handler.UserHandler
	System     *handler.SystemHandler
}

// Guards are the per-group middleware chains
type Guards struct {
	// Authenticated runs on every route except login: JWT first, then
	// anything that needs the principal
	Authenticated []gin.HandlerFunc
	// Login throttles credential attempts
	Login []gin.HandlerFunc
}

// APIGroups builds the versioned route groups
func APIGroups(h Handlers, g Guards) []RouteRegistrar {
	auth := NewDomainGroup("auth", "/auth").
		POST("/login", append(g.Login, h.Auth.Login)...)

	bookings := NewDomainGroup("bookings", "/bookings").Use(g.Authenticated...).
		POST("", h.Booking.Create).
		GET("", h.Booking.List).
		GET("/lr/:lr_number", h.Booking.GetByLRNumber).
		GET("/:id", h.Booking.Get).
		PATCH("/:id/status", h.Booking.UpdateStatus).
		POST("/:id/articles", h.Booking.AddArticle).
		GET("/:id/history", h.Booking.History)

	rates := NewDomainGroup("rates", "/rates").Use(g.Authenticated...).
		POST("/lookup", h.Booking.LookupRate)

	contracts := NewDomainGroup("rate-contracts", "/rate-contracts").Use(g.Authenticated...).
		POST("", h.Contract.Create).
		GET("", h.Contract.List).
		GET("/:id", h.Contract.Get).
		POST("/:id/slabs", h.Contract.AddSlab).
		POST("/:id/activate", h.Contract.Activate).
		POST("/:id/terminate", h.Contract.Terminate)

	branches := NewDomainGroup("branches", "/branches").Use(g.Authenticated...).
		POST("", h.MasterData.CreateBranch).
		GET("", h.MasterData.ListBranches)

	customers := NewDomainGroup("customers", "/customers").Use(g.Authenticated...).
		POST("", h.MasterData.CreateCustomer).
		GET("", h.MasterData.ListCustomers)

	articles := NewDomainGroup("articles", "/articles").Use(g.Authenticated...).
		POST("", h.MasterData.CreateArticle).
		GET("", h.MasterData.ListArticles)

	users := NewDomainGroup("users", "/users").Use(g.Authenticated...).
		POST("", h.User.Create).
		GET("", h.User.List).
		PUT("/:id/role", h.User.ChangeRole)

	system := NewDomainGroup("system", "/system").Use(g.Authenticated...).
		GET("/outbox", h.System.OutboxStats)

	health := NewDomainGroup("health", "").
		GET("/health", h.System.Health)

	return []RouteRegistrar{auth, bookings, rates, contracts, branches, customers, articles, users, system, health}
}
