package domain

import "time"

const (
	LikeTypeOn  = "ON"
	LikeTypeOff = "OFF"
)

type Stadium struct {
	ID                      uint      `gorm:"primaryKey" json:"id"`
	Name                    string    `gorm:"size:120;not null;index" json:"name"`
	Address                 string    `gorm:"size:255;not null" json:"address"`
	Lat                     float64   `json:"lat"`
	Lnt                     float64   `json:"lnt"`
	WeekdayPricePerHalfHour int       `gorm:"not null;default:0" json:"weekday_price_per_half_hour"`
	HolidayPricePerHalfHour int       `gorm:"not null;default:0" json:"holiday_price_per_half_hour"`
	OpenTime                string    `gorm:"size:8" json:"open_time"`
	CloseTime               string    `gorm:"size:8" json:"close_time"`
	StarAvg                 float64   `gorm:"not null;default:0" json:"star_avg"`
	MainImg                 string    `gorm:"size:1024" json:"main_img"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

type StadiumLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	MemberID  uint      `gorm:"not null;uniqueIndex:idx_stadium_likes_member_stadium" json:"member_id"`
	StadiumID uint      `gorm:"not null;uniqueIndex:idx_stadium_likes_member_stadium;index" json:"stadium_id"`
	CreatedAt time.Time `json:"created_at"`
}

// StadiumDocument is the searchable projection of a stadium.
type StadiumDocument struct {
	StadiumID uint      `gorm:"primaryKey;autoIncrement:false" json:"stadium_id"`
	Name      string    `gorm:"size:120;not null" json:"name"`
	Address   string    `gorm:"size:255;not null" json:"address"`
	MainImg   string    `gorm:"size:1024" json:"main_img"`
	StarAvg   float64   `gorm:"not null;default:0" json:"star_avg"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Stadium) TableName() string { return "stadiums" }
