package domain

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Status marks whether a contact or account is currently engaged.
type Status string

// Status values.
const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

// NormalizeStatus canonicalizes status spelling ("active" -> "Active"). Unknown values pass through.
func NormalizeStatus(status Status) Status {
	switch strings.ToLower(strings.TrimSpace(string(status))) {
	case "", "active":
		return StatusActive
	case "inactive":
		return StatusInactive
	default:
		return Status(strings.TrimSpace(string(status)))
	}
}

// IsValidStatus reports whether a status is supported.
func IsValidStatus(status Status) bool {
	return slices.Contains([]Status{StatusActive, StatusInactive}, NormalizeStatus(status))
}

// Contact is one person in the CRM.
type Contact struct {
	ID          string
	Name        string
	Email       string
	Phone       string
	Company     string
	Position    string
	Status      Status
	Location    string
	LastContact string
	Notes       string
}

// ContactInput holds write-time values for creating one contact.
type ContactInput struct {
	ID          string
	Name        string
	Email       string
	Phone       string
	Company     string
	Position    string
	Status      Status
	Location    string
	LastContact string
	Notes       string
}

// NewContact validates and normalizes one contact.
func NewContact(in ContactInput) (Contact, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.ID == "" {
		return Contact{}, ErrInvalidID
	}
	if in.Name == "" {
		return Contact{}, ErrInvalidName
	}
	if in.Email != "" && !strings.Contains(in.Email, "@") {
		return Contact{}, ErrInvalidEmail
	}
	in.Status = NormalizeStatus(in.Status)
	if !IsValidStatus(in.Status) {
		return Contact{}, ErrInvalidStatus
	}
	return Contact{
		ID:          in.ID,
		Name:        in.Name,
		Email:       in.Email,
		Phone:       strings.TrimSpace(in.Phone),
		Company:     strings.TrimSpace(in.Company),
		Position:    strings.TrimSpace(in.Position),
		Status:      in.Status,
		Location:    strings.TrimSpace(in.Location),
		LastContact: strings.TrimSpace(in.LastContact),
		Notes:       strings.TrimSpace(in.Notes),
	}, nil
}

// Initials returns up to two initials for avatar badges ("John Smith" -> "JS").
func (c Contact) Initials() string {
	return initials(c.Name)
}

// SearchFields returns the fields the contacts list is searched by.
func (c Contact) SearchFields() []string {
	return []string{c.Name, c.Company, c.Email}
}

// ConversationSearchFields returns the narrower field set used by the conversations contact picker.
func ConversationSearchFields(c Contact) []string {
	return []string{c.Name, c.Company}
}

// initials builds an uppercase badge from the first letters of the first two words.
func initials(name string) string {
	var b strings.Builder
	for _, word := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(word)
		if r == utf8.RuneError {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
		if b.Len() >= 2 {
			break
		}
	}
	return b.String()
}
