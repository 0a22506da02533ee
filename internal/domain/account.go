package domain

// Account is a registered email identity. It is created on first
// registration and never updated or deleted.
type Account struct {
	ID    string
	Email string
	Name  string
}
