package models

import "time"

// Wine is an entry on the wine list. Pairing holds a JSON array as text.
type Wine struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"size:255;not null" json:"name"`
	Region          *string   `gorm:"size:255" json:"region"`
	Description     *string   `gorm:"type:text" json:"description"`
	FullDescription *string   `gorm:"type:text" json:"full_description"`
	PriceGlass      *float64  `gorm:"type:decimal(10,2)" json:"price_glass"`
	PriceBottle     *float64  `gorm:"type:decimal(10,2)" json:"price_bottle"`
	ImageURL        *string   `gorm:"column:image_url;size:500" json:"image_url"`
	Grape           *string   `gorm:"size:255" json:"grape"`
	Pairing         string    `gorm:"type:text" json:"-"`
	IsAvailable     *bool     `gorm:"default:true" json:"is_available"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// WineView is the API shape with pairing decoded.
type WineView struct {
	ID              uint     `json:"id"`
	Name            string   `json:"name"`
	Region          *string  `json:"region"`
	Description     *string  `json:"description"`
	FullDescription *string  `json:"full_description"`
	PriceGlass      *float64 `json:"price_glass"`
	PriceBottle     *float64 `json:"price_bottle"`
	ImageURL        *string  `json:"image_url"`
	Grape           *string  `json:"grape"`
	Pairing         []string `json:"pairing"`
	IsAvailable     bool     `json:"is_available"`
}

func (w *Wine) View() WineView {
	return WineView{
		ID:              w.ID,
		Name:            w.Name,
		Region:          w.Region,
		Description:     w.Description,
		FullDescription: w.FullDescription,
		PriceGlass:      w.PriceGlass,
		PriceBottle:     w.PriceBottle,
		ImageURL:        w.ImageURL,
		Grape:           w.Grape,
		Pairing:         DecodeList(w.Pairing),
		IsAvailable:     w.IsAvailable == nil || *w.IsAvailable,
	}
}
