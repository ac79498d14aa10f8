package domain

import "time"

const (
	VerificationPurposeSignUp         = "signup"
	VerificationPurposePasswordChange = "password_change"
)

// EmailVerification is keyed by the code that was mailed to the member.
type EmailVerification struct {
	Key       string    `gorm:"primaryKey;size:64" json:"key"`
	Email     string    `gorm:"size:255;not null;index" json:"email"`
	Purpose   string    `gorm:"size:32;not null" json:"purpose"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (v *EmailVerification) Expired(now time.Time) bool {
	return !now.Before(v.ExpiresAt)
}
