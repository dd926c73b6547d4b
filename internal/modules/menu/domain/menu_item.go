package domain

import "infiniteLeafWeb/internal/shared/normalization"

// MenuItem is a dish or drink on the cafe menu. Description may contain markdown.
type MenuItem struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	IsPopular   bool    `json:"isPopular"`
	ImageURL    *string `json:"imageUrl,omitempty"`
}

// MenuItemInput is the create/update payload.
type MenuItemInput struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	IsPopular   bool    `json:"isPopular"`
	ImageURL    *string `json:"imageUrl,omitempty"`
}

func (m MenuItem) PriceLabel() string {
	return normalization.Money(m.Price)
}

// Image returns the image URL or "".
func (m MenuItem) Image() string {
	if m.ImageURL == nil {
		return ""
	}
	return *m.ImageURL
}

func (m MenuItem) Fields() map[string]any {
	return map[string]any{
		"id":          m.ID,
		"name":        m.Name,
		"price":       m.Price,
		"description": m.Description,
		"isPopular":   m.IsPopular,
		"imageUrl":    m.Image(),
	}
}

func NormalizeMenuItem(raw map[string]any) (MenuItem, bool) {
	id := normalization.AsInt(raw["id"])
	if id == 0 {
		return MenuItem{}, false
	}
	item := MenuItem{
		ID:          id,
		Name:        normalization.AsString(raw["name"]),
		Price:       normalization.AsFloat64(raw["price"]),
		Description: normalization.AsString(raw["description"]),
		IsPopular:   normalization.AsBool(raw["isPopular"]),
	}
	if url := normalization.AsString(raw["imageUrl"]); url != "" {
		item.ImageURL = &url
	}
	return item, true
}

// Popular filters items flagged as popular, preserving order.
func Popular(items []MenuItem) []MenuItem {
	out := make([]MenuItem, 0, len(items))
	for _, item := range items {
		if item.IsPopular {
			out = append(out, item)
		}
	}
	return out
}
