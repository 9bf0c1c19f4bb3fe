package models

// DeleteResponse is returned by the deletion endpoints.
type DeleteResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Results *BulkOutcomes `json:"results,omitempty"`
}

// BulkOutcomes partitions the requested ids: every id appears in exactly
// one of Success or Failed.
type BulkOutcomes struct {
	Success []string          `json:"success"`
	Failed  []string          `json:"failed"`
	Errors  map[string]string `json:"errors,omitempty"`
}

type PushResult struct {
	Token     string `json:"token"`
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

type BatchPushResponse struct {
	SuccessCount int          `json:"successCount"`
	FailureCount int          `json:"failureCount"`
	Results      []PushResult `json:"results"`
}

type Stats struct {
	TotalUsers          int64 `json:"totalUsers"`
	Counsellors         int64 `json:"counsellors"`
	PendingApplications int64 `json:"pendingApplications"`
	VerifiedCounsellors int64 `json:"verifiedCounsellors"`
	ActiveSessions      int64 `json:"activeSessions"`
}

// AccountStatus describes the login account behind a profile. Exists is
// false once the account has been removed from the identity service.
type AccountStatus struct {
	Exists   bool   `json:"exists"`
	Disabled bool   `json:"disabled"`
	Email    string `json:"email,omitempty"`
}

// UserDetail is a profile plus its login account. Account is omitted when
// the identity service could not be reached.
type UserDetail struct {
	User
	Account *AccountStatus `json:"account,omitempty"`
}

// LoginResponse carries the session token and its lifetime in seconds.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"`
	Admin     *Admin `json:"admin"`
}
