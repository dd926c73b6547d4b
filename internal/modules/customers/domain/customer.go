package domain

import "infiniteLeafWeb/internal/shared/normalization"

// Customer is a guest contact record.
type Customer struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
}

// CustomerInput is the create/update payload.
type CustomerInput struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
}

func (c Customer) Fields() map[string]any {
	return map[string]any{
		"id":          c.ID,
		"name":        c.Name,
		"phoneNumber": c.PhoneNumber,
	}
}

func NormalizeCustomer(raw map[string]any) (Customer, bool) {
	id := normalization.AsInt(raw["id"])
	if id == 0 {
		return Customer{}, false
	}
	return Customer{
		ID:          id,
		Name:        normalization.AsString(raw["name"]),
		PhoneNumber: normalization.AsString(raw["phoneNumber"]),
	}, true
}
