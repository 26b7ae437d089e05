package models

// TOTPSetupResponse carries what the admin needs to enroll an authenticator
type TOTPSetupResponse struct {
	Secret      string `json:"secret"`
	QRCode      string `json:"qr_code"` // data URI PNG
	Issuer      string `json:"issuer"`
	AccountName string `json:"account_name"`
}

// VerifyTOTPRequest carries a 6-digit code for enable/disable/login flows
type VerifyTOTPRequest struct {
	Code     string `json:"code"`
	Password string `json:"password,omitempty"` // required for disable
}

// User2FAStatus reports whether 2FA is active on an account
type User2FAStatus struct {
	Enabled bool `json:"enabled"`
}
