package models

// UserRecord is a user as served by the lookup API.
type UserRecord struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Website string `json:"website"`
}

// LookupState enumerates the mutually exclusive lookup outcomes.
type LookupState string

const (
	LookupIdle     LookupState = "idle"
	LookupLoading  LookupState = "loading"
	LookupFound    LookupState = "found"
	LookupNotFound LookupState = "not_found"
	LookupError    LookupState = "error"
)

// NotFoundReason tells apart the two ways a lookup ends up not found.
type NotFoundReason string

const (
	ReasonInvalidInput NotFoundReason = "invalid_input"
	ReasonMissingID    NotFoundReason = "missing_id"
)

// LookupStatus is replaced wholesale on every search.
type LookupStatus struct {
	State   LookupState    `json:"state"`
	User    *UserRecord    `json:"user,omitempty"`
	Message string         `json:"message,omitempty"`
	Reason  NotFoundReason `json:"reason,omitempty"`
}
