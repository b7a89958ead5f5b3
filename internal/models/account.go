package models

import "fmt"

// AccountInfo contains information about an account.
type AccountInfo struct {
	AccountID   int    `json:"_account_id" validate:"required,gt=0"`
	Name        string `json:"name,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Email       string `json:"email,omitempty"`
	Username    string `json:"username,omitempty"`
	Status      string `json:"status,omitempty"`
	Inactive    bool   `json:"inactive,omitempty"`

	// Set on the last element of a page when more accounts exist.
	MoreAccounts bool `json:"_more_accounts,omitempty"`
}

// Label is what the account is shown as in lists and prompts.
func (a *AccountInfo) Label() string {
	if a == nil {
		return ""
	}
	name := a.DisplayName
	if name == "" {
		name = a.Name
	}
	switch {
	case name != "" && a.Email != "":
		return fmt.Sprintf("%s <%s>", name, a.Email)
	case name != "":
		return name
	case a.Email != "":
		return a.Email
	case a.Username != "":
		return a.Username
	}
	return fmt.Sprintf("account %d", a.AccountID)
}

// Identifier is the string the REST API accepts for reviewer and assignee inputs.
func (a *AccountInfo) Identifier() string {
	switch {
	case a.Username != "":
		return a.Username
	case a.Email != "":
		return a.Email
	}
	return fmt.Sprintf("%d", a.AccountID)
}
