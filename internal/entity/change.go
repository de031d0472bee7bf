package entity

// LeadChange is the signal emitted after a committed write to the leads table.
// It identifies the row but carries no delta: observers re-fetch.
type LeadChange struct {
	Op     string `json:"op"` // INSERT, UPDATE, DELETE
	LeadID string `json:"id"`
	UserID string `json:"user_id"`
}

// Broadcast reports whether the change is addressed to every observer,
// as happens after the change feed reconnects and writes may have been missed.
func (c LeadChange) Broadcast() bool {
	return c.UserID == ""
}
