package domain

import (
	"slices"
	"strings"
)

// AccountTier segments accounts by size.
type AccountTier string

// AccountTier values.
const (
	AccountTierEnterprise AccountTier = "Enterprise"
	AccountTierMidMarket  AccountTier = "Mid-Market"
	AccountTierSMB        AccountTier = "SMB"
)

// validAccountTiers stores supported tiers.
var validAccountTiers = []AccountTier{AccountTierEnterprise, AccountTierMidMarket, AccountTierSMB}

// Account is one customer organization.
type Account struct {
	ID            string
	Name          string
	Industry      string
	Revenue       string
	Employees     string
	Status        Status
	Tier          AccountTier
	Contacts      int
	Opportunities int
	LastActivity  string
	Location      string
	Website       string
}

// AccountInput holds write-time values for creating one account.
type AccountInput struct {
	ID            string
	Name          string
	Industry      string
	Revenue       string
	Employees     string
	Status        Status
	Tier          AccountTier
	Contacts      int
	Opportunities int
	LastActivity  string
	Location      string
	Website       string
}

// NewAccount validates and normalizes one account.
func NewAccount(in AccountInput) (Account, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Name = strings.TrimSpace(in.Name)
	if in.ID == "" {
		return Account{}, ErrInvalidID
	}
	if in.Name == "" {
		return Account{}, ErrInvalidName
	}
	in.Status = NormalizeStatus(in.Status)
	if !IsValidStatus(in.Status) {
		return Account{}, ErrInvalidStatus
	}
	in.Tier = AccountTier(strings.TrimSpace(string(in.Tier)))
	if in.Tier != "" && !slices.Contains(validAccountTiers, in.Tier) {
		return Account{}, ErrInvalidTier
	}
	if in.Contacts < 0 {
		in.Contacts = 0
	}
	if in.Opportunities < 0 {
		in.Opportunities = 0
	}
	return Account{
		ID:            in.ID,
		Name:          in.Name,
		Industry:      strings.TrimSpace(in.Industry),
		Revenue:       strings.TrimSpace(in.Revenue),
		Employees:     strings.TrimSpace(in.Employees),
		Status:        in.Status,
		Tier:          in.Tier,
		Contacts:      in.Contacts,
		Opportunities: in.Opportunities,
		LastActivity:  strings.TrimSpace(in.LastActivity),
		Location:      strings.TrimSpace(in.Location),
		Website:       strings.TrimSpace(in.Website),
	}, nil
}

// Initials returns up to two initials for avatar badges.
func (a Account) Initials() string {
	return initials(a.Name)
}

// SearchFields returns the fields the accounts list is searched by.
func (a Account) SearchFields() []string {
	return []string{a.Name, a.Industry, string(a.Tier)}
}
