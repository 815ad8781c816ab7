package httpserver

import (
	"net/http"

	addresssvc "backoffice/internal/service/address"
	"github.com/gin-gonic/gin"
)

func (h *handlers) listAddresses(c *gin.Context) {
	items, err := h.addresses.FindByCustomerID(c.Request.Context(), c.Param("customerId"), organizationID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newList(items))
}

func (h *handlers) createAddress(c *gin.Context) {
	var in addresssvc.CreateAddressInput
	if !bindJSON(c, &in) {
		return
	}
	in.CustomerID = c.Param("customerId")
	a, err := h.addresses.Create(c.Request.Context(), in, organizationID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *handlers) getDefaultAddress(c *gin.Context) {
	a, err := h.addresses.FindDefaultByCustomerID(c.Request.Context(), c.Param("customerId"), organizationID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *handlers) getAddressStats(c *gin.Context) {
	stats, err := h.addresses.GetCustomerAddressStats(c.Request.Context(), c.Param("customerId"), organizationID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *handlers) setDefaultAddress(c *gin.Context) {
	a, err := h.addresses.SetAsDefault(c.Request.Context(), c.Param("customerId"), c.Param("addressId"), organizationID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *handlers) verifyOwnership(c *gin.Context) {
	owned, err := h.addresses.VerifyOwnership(c.Request.Context(), c.Param("addressId"), c.Param("customerId"), organizationID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"owned": owned})
}

func (h *handlers) getAddress(c *gin.Context) {
	a, err := h.addresses.FindByID(c.Request.Context(), c.Param("addressId"), organizationID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *handlers) updateAddress(c *gin.Context) {
	var in addresssvc.UpdateAddressInput
	if !bindJSON(c, &in) {
		return
	}
	a, err := h.addresses.Update(c.Request.Context(), c.Param("addressId"), in, organizationID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *handlers) deleteAddress(c *gin.Context) {
	if err := h.addresses.Delete(c.Request.Context(), c.Param("addressId"), organizationID(c)); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
