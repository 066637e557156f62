// Package entity contains the core business objects of the project.
package entity

// AccountStatus represents the visibility state of an account.
// Accounts are never physically removed; deletion is the one-way
// transition from AccountActive to AccountInactive.
type AccountStatus string

const (
	// AccountActive indicates the account can authenticate and is listed.
	AccountActive AccountStatus = "active"
	// AccountInactive indicates a soft-deleted account. No business
	// operation transitions an account out of this state.
	AccountInactive AccountStatus = "inactive"
)

// String returns the string representation of the AccountStatus.
func (s AccountStatus) String() string {
	return string(s)
}

// IsValid checks if the AccountStatus is a valid value.
func (s AccountStatus) IsValid() bool {
	switch s {
	case AccountActive, AccountInactive:
		return true
	default:
		return false
	}
}
