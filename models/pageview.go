package models

import "time"

// PageView counts public API reads per day and route, used by the admin dashboard.
type PageView struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Date      time.Time `gorm:"index:idx_pv_date_path,unique;type:date;not null" json:"date"`
	Path      string    `gorm:"index:idx_pv_date_path,unique;size:255;not null" json:"path"`
	Count     int64     `gorm:"not null;default:0" json:"count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// All lists every model migrated at boot, parents before children.
func All() []interface{} {
	return []interface{}{
		&User{},
		&MenuCategory{},
		&MenuItem{},
		&Wine{},
		&Reservation{},
		&ContactMessage{},
		&PageView{},
	}
}
