package domain

import "time"

// SocialCredential is a long-lived Graph API token used to pull the club's feed.
type SocialCredential struct {
	CredentialID    string     `json:"credentialID"`
	AccountName     string     `json:"accountName"`
	AccessToken     string     `json:"-"`
	ExpiresAt       *time.Time `json:"expiresAt,omitempty"`
	LastRefreshedAt *time.Time `json:"lastRefreshedAt,omitempty"`
	LastError       *string    `json:"lastError,omitempty"`
	AuditFields
}

// RefreshedToken is the provider response to a refresh call.
type RefreshedToken struct {
	AccessToken string
	ExpiresIn   time.Duration
}

// TokenRefreshResult reports the outcome of refreshing one credential.
type TokenRefreshResult struct {
	AccountName string     `json:"accountName"`
	Refreshed   bool       `json:"refreshed"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	Error       string     `json:"error,omitempty"`
}
