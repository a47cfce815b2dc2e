package model

const (
	SectorBank = "bank"
	SectorITHR = "ithr"

	RoleAdmin = "admin"
)

// Account is a predefined administrator account. The password may be stored
// as a bcrypt hash or, for local setups, in plain text.
type Account struct {
	Username string
	Password string
	Sector   string
	Role     string
}
