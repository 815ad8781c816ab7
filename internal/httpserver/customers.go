package httpserver

import (
	"net/http"
	"strconv"
	"strings"

	"backoffice/internal/domain"
	customersvc "backoffice/internal/service/customer"
	"github.com/gin-gonic/gin"
)

type handlers struct {
	customers CustomerService
	addresses AddressService
}

type listResponse[T any] struct {
	Count   int `json:"count"`
	Results []T `json:"results"`
}

func newList[T any](items []T) listResponse[T] {
	if items == nil {
		items = []T{}
	}
	return listResponse[T]{Count: len(items), Results: items}
}

type registerRequest struct {
	UserID string `json:"userId"`
}

func (h *handlers) listCustomers(c *gin.Context) {
	filter := domain.CustomerFilter{Search: c.Query("search")}
	if raw := strings.TrimSpace(c.Query("guest")); raw != "" {
		guest, err := strconv.ParseBool(raw)
		if err != nil {
			abortWithError(c, badRequest("guest", "guest must be true or false"))
			return
		}
		filter.IsGuest = &guest
	}

	items, err := h.customers.FindAll(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newList(items))
}

func (h *handlers) searchCustomers(c *gin.Context) {
	items, err := h.customers.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newList(items))
}

func (h *handlers) lookupCustomer(c *gin.Context) {
	var (
		customer *domain.Customer
		err      error
	)
	switch email, phone := strings.TrimSpace(c.Query("email")), strings.TrimSpace(c.Query("phone")); {
	case email != "":
		customer, err = h.customers.FindByEmail(c.Request.Context(), email)
	case phone != "":
		customer, err = h.customers.FindByPhone(c.Request.Context(), phone)
	default:
		err = badRequest("email", "email or phone query parameter is required")
	}
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *handlers) customerExists(c *gin.Context) {
	var (
		exists bool
		err    error
	)
	switch email, phone := strings.TrimSpace(c.Query("email")), strings.TrimSpace(c.Query("phone")); {
	case email != "":
		exists, err = h.customers.ExistsByEmail(c.Request.Context(), email)
	case phone != "":
		exists, err = h.customers.ExistsByPhone(c.Request.Context(), phone)
	default:
		err = badRequest("email", "email or phone query parameter is required")
	}
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": exists})
}

func (h *handlers) createCustomer(c *gin.Context) {
	var in customersvc.CreateCustomerInput
	if !bindJSON(c, &in) {
		return
	}
	customer, err := h.customers.Create(c.Request.Context(), in)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

func (h *handlers) createGuest(c *gin.Context) {
	var in customersvc.CreateGuestInput
	if !bindJSON(c, &in) {
		return
	}
	customer, err := h.customers.CreateGuest(c.Request.Context(), in)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *handlers) getOrCreateCustomer(c *gin.Context) {
	var in customersvc.CreateCustomerInput
	if !bindJSON(c, &in) {
		return
	}
	customer, created, err := h.customers.GetOrCreateByEmail(c.Request.Context(), in)
	if err != nil {
		abortWithError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, customer)
}

func (h *handlers) getCustomer(c *gin.Context) {
	customer, err := h.customers.FindByID(c.Request.Context(), c.Param("customerId"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *handlers) getCustomerDetails(c *gin.Context) {
	details, err := h.customers.FindByIDWithAddresses(c.Request.Context(), c.Param("customerId"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	if details.Addresses == nil {
		details.Addresses = []domain.Address{}
	}
	c.JSON(http.StatusOK, details)
}

func (h *handlers) getCustomerStats(c *gin.Context) {
	stats, err := h.customers.GetStats(c.Request.Context(), c.Param("customerId"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *handlers) updateCustomer(c *gin.Context) {
	var in customersvc.UpdateCustomerInput
	if !bindJSON(c, &in) {
		return
	}
	customer, err := h.customers.Update(c.Request.Context(), c.Param("customerId"), in)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *handlers) registerGuest(c *gin.Context) {
	var in registerRequest
	if !bindJSON(c, &in) {
		return
	}
	customer, err := h.customers.ConvertGuestToRegistered(c.Request.Context(), c.Param("customerId"), in.UserID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *handlers) deleteCustomer(c *gin.Context) {
	if err := h.customers.Delete(c.Request.Context(), c.Param("customerId")); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// bindJSON decodes the request body into dst, aborting with 400 on malformed JSON.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		abortWithError(c, badRequest("body", "request body must be valid JSON"))
		return false
	}
	return true
}
