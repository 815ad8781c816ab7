package httpserver

import (
	"context"
	"errors"
	"slices"

	"backoffice/internal/domain"
	"backoffice/internal/logger"
	"backoffice/internal/metrics"
	addresssvc "backoffice/internal/service/address"
	customersvc "backoffice/internal/service/customer"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// CustomerService is the customer directory used by the handlers.
type CustomerService interface {
	FindAll(ctx context.Context, filter domain.CustomerFilter) ([]domain.Customer, error)
	FindByID(ctx context.Context, id string) (*domain.Customer, error)
	FindByIDWithAddresses(ctx context.Context, id string) (*domain.CustomerWithAddresses, error)
	FindByEmail(ctx context.Context, email string) (*domain.Customer, error)
	FindByPhone(ctx context.Context, phone string) (*domain.Customer, error)
	Search(ctx context.Context, term string) ([]domain.Customer, error)
	Create(ctx context.Context, in customersvc.CreateCustomerInput) (*domain.Customer, error)
	CreateGuest(ctx context.Context, in customersvc.CreateGuestInput) (*domain.Customer, error)
	ConvertGuestToRegistered(ctx context.Context, customerID, userID string) (*domain.Customer, error)
	Update(ctx context.Context, id string, in customersvc.UpdateCustomerInput) (*domain.Customer, error)
	Delete(ctx context.Context, id string) error
	GetStats(ctx context.Context, id string) (*domain.CustomerStats, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
	GetOrCreateByEmail(ctx context.Context, in customersvc.CreateCustomerInput) (*domain.Customer, bool, error)
}

// AddressService is the address book used by the handlers.
type AddressService interface {
	FindByCustomerID(ctx context.Context, customerID, orgID string) ([]domain.Address, error)
	FindByID(ctx context.Context, id, orgID string) (*domain.Address, error)
	FindDefaultByCustomerID(ctx context.Context, customerID, orgID string) (*domain.Address, error)
	Create(ctx context.Context, in addresssvc.CreateAddressInput, orgID string) (*domain.Address, error)
	Update(ctx context.Context, id string, in addresssvc.UpdateAddressInput, orgID string) (*domain.Address, error)
	SetAsDefault(ctx context.Context, customerID, addressID, orgID string) (*domain.Address, error)
	Delete(ctx context.Context, id, orgID string) error
	VerifyOwnership(ctx context.Context, addressID, customerID, orgID string) (bool, error)
	GetCustomerAddressStats(ctx context.Context, customerID, orgID string) (*domain.AddressStats, error)
}

// Deps groups the collaborators the router needs. Metrics is optional.
type Deps struct {
	Organizations OrganizationResolver
	Customers     CustomerService
	Addresses     AddressService
	Metrics       *metrics.Metrics
}

// buildRouter wires routes for the API.
func buildRouter(log *zap.Logger, db *pgxpool.Pool, deps Deps, corsOrigins []string) (*gin.Engine, error) {
	if deps.Organizations == nil || deps.Customers == nil || deps.Addresses == nil {
		return nil, errors.New("httpserver: organizations, customers and addresses are required")
	}
	log = logger.OrNop(log)

	router := gin.New()
	router.Use(requestLogger(log))
	if deps.Metrics != nil {
		router.Use(deps.Metrics.GinMiddleware())
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}
	router.Use(gin.Recovery(), corsMiddleware(corsOrigins), errorMiddleware(log))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	h := &handlers{customers: deps.Customers, addresses: deps.Addresses}

	org := router.Group("/organizations/:orgKey", organizationMiddleware(deps.Organizations))

	customers := org.Group("/customers")
	customers.GET("", h.listCustomers)
	customers.POST("", h.createCustomer)
	customers.GET("/search", h.searchCustomers)
	customers.GET("/lookup", h.lookupCustomer)
	customers.GET("/exists", h.customerExists)
	customers.POST("/guest", h.createGuest)
	customers.POST("/attribution", h.getOrCreateCustomer)
	customers.GET("/:customerId", h.getCustomer)
	customers.PATCH("/:customerId", h.updateCustomer)
	customers.DELETE("/:customerId", h.deleteCustomer)
	customers.GET("/:customerId/details", h.getCustomerDetails)
	customers.GET("/:customerId/stats", h.getCustomerStats)
	customers.POST("/:customerId/register", h.registerGuest)

	book := customers.Group("/:customerId/addresses")
	book.GET("", h.listAddresses)
	book.POST("", h.createAddress)
	book.GET("/default", h.getDefaultAddress)
	book.GET("/stats", h.getAddressStats)
	book.PUT("/:addressId/default", h.setDefaultAddress)
	book.GET("/:addressId/ownership", h.verifyOwnership)

	addresses := org.Group("/addresses")
	addresses.GET("/:addressId", h.getAddress)
	addresses.PATCH("/:addressId", h.updateAddress)
	addresses.DELETE("/:addressId", h.deleteAddress)

	return router, nil
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization", headerRequestID)
	cfg.ExposeHeaders = []string{headerRequestID}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
