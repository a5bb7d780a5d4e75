package domain

// AdminRole identifies operator privileges carried in admin tokens.
type AdminRole string

const (
	// AdminRoleAdmin may change the catalog and recover suggestions.
	AdminRoleAdmin AdminRole = "ADMIN"
	// AdminRoleOperator may only read queue state.
	AdminRoleOperator AdminRole = "OPERATOR"
)

// Valid reports whether r is a known role.
func (r AdminRole) Valid() bool {
	return r == AdminRoleAdmin || r == AdminRoleOperator
}
