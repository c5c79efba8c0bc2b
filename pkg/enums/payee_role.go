package enums

import "fmt"

// PayeeRole distinguishes the two reseller tiers.
type PayeeRole string

const (
	PayeeRoleManager PayeeRole = "MANAGER"
	PayeeRoleAgent   PayeeRole = "AGENT"
)

var validPayeeRoles = []PayeeRole{
	PayeeRoleManager,
	PayeeRoleAgent,
}

// IsValid reports whether the value matches a known payee role.
func (r PayeeRole) IsValid() bool {
	for _, candidate := range validPayeeRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParsePayeeRole converts raw input into PayeeRole.
func ParsePayeeRole(value string) (PayeeRole, error) {
	for _, candidate := range validPayeeRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payee role %q", value)
}
