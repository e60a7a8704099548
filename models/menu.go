package models

import "time"

// MenuCategory groups dishes on the menu (Antipasti, Primi, ...).
type MenuCategory struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"size:255;not null" json:"name"`
	Description *string    `gorm:"type:text" json:"description"`
	ImageURL    *string    `gorm:"column:image_url;size:500" json:"image_url"`
	CreatedAt   time.Time  `json:"created_at"`
	Items       []MenuItem `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE;" json:"-"`
}

// MenuItem is a single dish. Allergens and Ingredients hold JSON arrays as text; older
// rows may contain comma separated values instead, see DecodeList.
type MenuItem struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	CategoryID       uint      `gorm:"index" json:"category_id"`
	Name             string    `gorm:"size:255;not null" json:"name"`
	Description      *string   `gorm:"type:text" json:"description"`
	ShortDescription *string   `gorm:"type:text" json:"short_description"`
	FullDescription  *string   `gorm:"type:text" json:"full_description"`
	Allergens        string    `gorm:"type:text" json:"-"`
	Ingredients      string    `gorm:"type:text" json:"-"`
	Price            float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	ImageURL         *string   `gorm:"column:image_url;size:500" json:"image_url"`
	IsAvailable      *bool     `gorm:"default:true" json:"is_available"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// MenuItemView is the public shape of a dish with its list fields decoded.
type MenuItemView struct {
	ID               uint     `json:"id"`
	Name             string   `json:"name"`
	Description      *string  `json:"description"`
	ShortDescription *string  `json:"short_description"`
	FullDescription  *string  `json:"full_description"`
	Allergens        []string `json:"allergens"`
	Ingredients      []string `json:"ingredients"`
	Price            float64  `json:"price"`
	ImageURL         *string  `json:"image_url"`
	IsAvailable      bool     `json:"is_available"`
}

// View converts the row for API output.
func (m *MenuItem) View() MenuItemView {
	return MenuItemView{
		ID:               m.ID,
		Name:             m.Name,
		Description:      m.Description,
		ShortDescription: m.ShortDescription,
		FullDescription:  m.FullDescription,
		Allergens:        DecodeList(m.Allergens),
		Ingredients:      DecodeList(m.Ingredients),
		Price:            m.Price,
		ImageURL:         m.ImageURL,
		IsAvailable:      m.IsAvailable == nil || *m.IsAvailable,
	}
}

// CategoryView is a category with its dishes, as served by GET /api/menu.
type CategoryView struct {
	ID          uint           `json:"id"`
	Name        string         `json:"name"`
	Description *string        `json:"description"`
	ImageURL    *string        `json:"image_url"`
	Items       []MenuItemView `json:"items"`
}

// View converts the category and its preloaded items.
func (c *MenuCategory) View() CategoryView {
	items := make([]MenuItemView, 0, len(c.Items))
	for i := range c.Items {
		items = append(items, c.Items[i].View())
	}
	return CategoryView{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		ImageURL:    c.ImageURL,
		Items:       items,
	}
}
