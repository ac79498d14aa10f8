package database

import (
	"context"
	"time"

	"github.com/minwonhaeso/esc-server/internal/domain"
	"github.com/minwonhaeso/esc-server/internal/observability"

	"gorm.io/gorm"
)

var demoStadiums = []domain.Stadium{
	{Name: "Jamsil Futsal Park", Address: "Seoul Songpa-gu Olympic-ro 25", Lat: 37.5121, Lnt: 127.0719, WeekdayPricePerHalfHour: 30000, HolidayPricePerHalfHour: 40000, OpenTime: "06:00", CloseTime: "23:00", StarAvg: 4.5},
	{Name: "Mapo Indoor Basketball", Address: "Seoul Mapo-gu World Cup-ro 240", Lat: 37.5683, Lnt: 126.8972, WeekdayPricePerHalfHour: 20000, HolidayPricePerHalfHour: 25000, OpenTime: "08:00", CloseTime: "22:00", StarAvg: 4.1},
	{Name: "Haeundae Beach Volleyball", Address: "Busan Haeundae-gu Haeundaehaebyeon-ro 264", Lat: 35.1587, Lnt: 129.1604, WeekdayPricePerHalfHour: 15000, HolidayPricePerHalfHour: 20000, OpenTime: "09:00", CloseTime: "19:00", StarAvg: 3.8},
	{Name: "Suwon Badminton Center", Address: "Gyeonggi Suwon-si Gyeongsu-daero 893", Lat: 37.2997, Lnt: 127.0110, WeekdayPricePerHalfHour: 8000, HolidayPricePerHalfHour: 10000, OpenTime: "06:00", CloseTime: "22:00", StarAvg: 4.7},
	{Name: "Daejeon Tennis Court", Address: "Daejeon Yuseong-gu Daehak-ro 99", Lat: 36.3622, Lnt: 127.3449, WeekdayPricePerHalfHour: 12000, HolidayPricePerHalfHour: 15000, OpenTime: "07:00", CloseTime: "21:00", StarAvg: 4.0},
}

type SeedReport struct {
	CreatedStadiums int              `json:"created_stadiums"`
	Stadiums        []domain.Stadium `json:"-"`
	Noop            bool             `json:"noop"`
}

// SeedStadiums inserts the demo stadiums that are missing by name and returns
// every demo stadium, created or not.
func SeedStadiums(db *gorm.DB) (*SeedReport, error) {
	start := time.Now()
	defer func() {
		observability.RecordDatabaseStartupDuration(context.Background(), "seed", time.Since(start))
	}()

	report := &SeedReport{}
	for _, s := range demoStadiums {
		stadium := s
		res := db.Where("name = ?", stadium.Name).FirstOrCreate(&stadium)
		if res.Error != nil {
			observability.RecordDatabaseStartupEvent(context.Background(), "seed", "error")
			return nil, res.Error
		}
		if res.RowsAffected > 0 {
			report.CreatedStadiums++
		}
		report.Stadiums = append(report.Stadiums, stadium)
	}
	report.Noop = report.CreatedStadiums == 0
	observability.RecordDatabaseStartupEvent(context.Background(), "seed", "success")
	return report, nil
}

// DemoStadiums returns a copy of the stadiums SeedStadiums ensures.
func DemoStadiums() []domain.Stadium {
	out := make([]domain.Stadium, len(demoStadiums))
	copy(out, demoStadiums)
	return out
}
