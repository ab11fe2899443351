package services

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"watchtrade_backend/internal/models"
	"watchtrade_backend/internal/repositories"
	"watchtrade_backend/pkg/utils"
)

// --- Custom Service Errors for Contacts ---
var (
	ErrContactNotFound   = errors.New("contact not found")
	ErrPhoneNumberExists = errors.New("phone number already exists")
	ErrEmailExists       = errors.New("email already exists")
	ErrContactValidation = errors.New("contact data validation error")
)

// --- Contact DTOs ---
type CreateContactRequest struct {
	FullName    string  `json:"full_name" binding:"required"`
	PhoneNumber *string `json:"phone_number"`
	Email       *string `json:"email"`
	Type        *string `json:"type"` // client (default), supplier or both
	Notes       *string `json:"notes"`
}

type UpdateContactRequest struct {
	FullName    *string `json:"full_name"`
	PhoneNumber *string `json:"phone_number"`
	Email       *string `json:"email"`
	Type        *string `json:"type"`
	Notes       *string `json:"notes"`
}

// --- ContactService Interface ---
type ContactService interface {
	CreateContact(actor Actor, req CreateContactRequest) (*models.Contact, error)
	GetContactByID(contactID string) (*models.Contact, error)
	GetContacts(page, pageSize int, searchTerm, contactType *string) ([]models.Contact, int, error)
	UpdateContact(actor Actor, contactID string, req UpdateContactRequest) (*models.Contact, error)
	DeleteContact(actor Actor, contactID string) error
}

// --- contactService Implementation ---
type contactService struct {
	contactRepo repositories.ContactRepository
	db          *sql.DB
}

// NewContactService creates a new instance of ContactService.
func NewContactService(repo repositories.ContactRepository, db *sql.DB) ContactService {
	return &contactService{
		contactRepo: repo,
		db:          db,
	}
}

var emailRegex = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,4}$`)

func validContactType(t string) bool {
	switch t {
	case models.ContactTypeClient, models.ContactTypeSupplier, models.ContactTypeBoth:
		return true
	}
	return false
}

func (s *contactService) validateContactData(email *string) error {
	if email != nil && *email != "" {
		em := strings.ToLower(strings.TrimSpace(*email))
		if !emailRegex.MatchString(em) {
			return fmt.Errorf("%w: email format is invalid", ErrContactValidation)
		}
	}
	return nil
}

// CreateContact registers a new contact.
func (s *contactService) CreateContact(actor Actor, req CreateContactRequest) (*models.Contact, error) {
	if !actor.CanWrite() {
		return nil, fmt.Errorf("%w: role %s may not create contacts", ErrInsufficientPermission, actor.Role)
	}
	if utils.IsEmpty(req.FullName) {
		return nil, fmt.Errorf("%w: full name cannot be empty", ErrContactValidation)
	}
	if err := s.validateContactData(req.Email); err != nil {
		return nil, err
	}

	contactType := models.ContactTypeClient
	if req.Type != nil {
		if !validContactType(*req.Type) {
			return nil, fmt.Errorf("%w: unknown contact type %q", ErrContactValidation, *req.Type)
		}
		contactType = *req.Type
	}

	contact := &models.Contact{
		ID:          utils.NewID(),
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
		Type:        contactType,
		Notes:       req.Notes,
	}
	if err := s.contactRepo.CreateContact(s.db, contact); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			if strings.Contains(err.Error(), "phone") {
				return nil, ErrPhoneNumberExists
			}
			return nil, ErrEmailExists
		}
		return nil, err
	}
	return contact, nil
}

// GetContactByID fetches a single contact.
func (s *contactService) GetContactByID(contactID string) (*models.Contact, error) {
	contact, err := s.contactRepo.GetContactByID(contactID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrContactNotFound, contactID)
		}
		return nil, err
	}
	return contact, nil
}

// GetContacts lists contacts with pagination, search and type filter.
func (s *contactService) GetContacts(page, pageSize int, searchTerm, contactType *string) ([]models.Contact, int, error) {
	return s.contactRepo.GetContacts(page, pageSize, searchTerm, contactType)
}

// UpdateContact edits an existing contact.
func (s *contactService) UpdateContact(actor Actor, contactID string, req UpdateContactRequest) (*models.Contact, error) {
	if !actor.CanWrite() {
		return nil, fmt.Errorf("%w: role %s may not update contacts", ErrInsufficientPermission, actor.Role)
	}

	contact, err := s.GetContactByID(contactID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		if utils.IsEmpty(*req.FullName) {
			return nil, fmt.Errorf("%w: full name cannot be empty if provided", ErrContactValidation)
		}
		contact.FullName = *req.FullName
	}
	if req.PhoneNumber != nil {
		contact.PhoneNumber = req.PhoneNumber
	}
	if req.Email != nil {
		if err := s.validateContactData(req.Email); err != nil {
			return nil, err
		}
		contact.Email = req.Email
	}
	if req.Type != nil {
		if !validContactType(*req.Type) {
			return nil, fmt.Errorf("%w: unknown contact type %q", ErrContactValidation, *req.Type)
		}
		contact.Type = *req.Type
	}
	if req.Notes != nil {
		contact.Notes = req.Notes
	}

	if err := s.contactRepo.UpdateContact(s.db, contact); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			if strings.Contains(err.Error(), "phone") {
				return nil, ErrPhoneNumberExists
			}
			return nil, ErrEmailExists
		}
		return nil, err
	}
	return contact, nil
}

// DeleteContact removes a contact from the address book.
func (s *contactService) DeleteContact(actor Actor, contactID string) error {
	if !actor.CanWrite() {
		return fmt.Errorf("%w: role %s may not delete contacts", ErrInsufficientPermission, actor.Role)
	}
	if err := s.contactRepo.DeleteContact(s.db, contactID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrContactNotFound, contactID)
		}
		return err
	}
	return nil
}
