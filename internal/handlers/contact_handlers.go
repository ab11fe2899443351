package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"watchtrade_backend/internal/models"
	"watchtrade_backend/internal/services"
	"watchtrade_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ContactHandler holds the contact service.
type ContactHandler struct {
	contactService services.ContactService
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(cs services.ContactService) *ContactHandler {
	return &ContactHandler{contactService: cs}
}

// CreateContact handles the creation of a new contact.
func (h *ContactHandler) CreateContact(c *gin.Context) {
	var req services.CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateContact: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	contact, err := h.contactService.CreateContact(currentActor(c), req)
	if err != nil {
		utils.LogError(err, "CreateContact: Error from contactService.CreateContact")
		if errors.Is(err, services.ErrPhoneNumberExists) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Phone number already exists.", err.Error()))
		} else if errors.Is(err, services.ErrEmailExists) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Email already exists.", err.Error()))
		} else if errors.Is(err, services.ErrContactValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else if errors.Is(err, services.ErrInsufficientPermission) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeInsufficientPermission, "You do not have permission to create contacts.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create contact.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, contact)
}

// GetContacts handles fetching contacts with pagination, search and
// optional type filter.
func (h *ContactHandler) GetContacts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}

	var pSearch, pType *string
	if s := c.Query("search"); s != "" {
		pSearch = &s
	}
	if t := c.Query("type"); t != "" {
		pType = &t
	}

	contacts, totalCount, err := h.contactService.GetContacts(page, pageSize, pSearch, pType)
	if err != nil {
		utils.LogError(err, "GetContacts: Error from contactService.GetContacts")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch contacts.", "Internal error"))
		return
	}

	if contacts == nil {
		contacts = []models.Contact{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      contacts,
		"total":     totalCount,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetContactByID handles fetching a single contact by ID.
func (h *ContactHandler) GetContactByID(c *gin.Context) {
	contact, err := h.contactService.GetContactByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrContactNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Contact not found.", err.Error()))
		} else {
			utils.LogError(err, "GetContactByID: Error from contactService.GetContactByID")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch contact.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, contact)
}

// UpdateContact handles updating an existing contact.
func (h *ContactHandler) UpdateContact(c *gin.Context) {
	var req services.UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	contact, err := h.contactService.UpdateContact(currentActor(c), c.Param("id"), req)
	if err != nil {
		utils.LogError(err, "UpdateContact: Error from contactService.UpdateContact")
		if errors.Is(err, services.ErrContactNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Contact not found.", err.Error()))
		} else if errors.Is(err, services.ErrPhoneNumberExists) || errors.Is(err, services.ErrEmailExists) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Phone number or email already exists.", err.Error()))
		} else if errors.Is(err, services.ErrContactValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else if errors.Is(err, services.ErrInsufficientPermission) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeInsufficientPermission, "You do not have permission to update contacts.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update contact.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, contact)
}

// DeleteContact handles deleting a contact.
func (h *ContactHandler) DeleteContact(c *gin.Context) {
	if err := h.contactService.DeleteContact(currentActor(c), c.Param("id")); err != nil {
		if errors.Is(err, services.ErrContactNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Contact not found.", err.Error()))
		} else if errors.Is(err, services.ErrInsufficientPermission) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeInsufficientPermission, "You do not have permission to delete contacts.", err.Error()))
		} else {
			utils.LogError(err, "DeleteContact: Error from contactService.DeleteContact")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete contact.", "Internal error"))
		}
		return
	}
	c.Status(http.StatusNoContent)
}
