package domain

import "time"

const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"

	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type Member struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string    `gorm:"size:1024" json:"-"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Nickname     string    `gorm:"size:255" json:"nickname"`
	ImgURL       string    `gorm:"size:1024" json:"img_url"`
	Provider     string    `gorm:"size:32;not null;default:local" json:"provider"`
	Role         string    `gorm:"size:32;not null;default:USER" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type OAuthAccount struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	MemberID       uint      `gorm:"index;not null" json:"member_id"`
	Provider       string    `gorm:"size:32;not null;uniqueIndex:idx_oauth_provider_user" json:"provider"`
	ProviderUserID string    `gorm:"size:255;not null;uniqueIndex:idx_oauth_provider_user" json:"provider_user_id"`
	CreatedAt      time.Time `json:"created_at"`
}

func (OAuthAccount) TableName() string { return "oauth_accounts" }
