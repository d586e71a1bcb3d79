package port

type BalanceStore interface {
	// Get returns the user's balance. The second return is false when the
	// user has no account.
	Get(username string) (int, bool)
	// Set writes the user's balance, creating the account if needed.
	Set(username string, amount int) error
	// Ensure returns the user's balance, creating the account with the
	// configured starting balance first if it does not exist.
	Ensure(username string) (int, error)
	// All returns every known account and its balance.
	All() (map[string]int, error)
}
