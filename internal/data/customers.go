package data

import "database/sql"

type Customer struct {
	ID         string `json:"id"`
	Names      string `json:"names"`
	Lastnames  string `json:"lastnames"`
	Birthday   Date   `json:"birthday"`
	URLPicture string `json:"url_picture"`
}

func (c Customer) ResourceID() string {
	return c.ID
}

func (c Customer) WithID(id string) Customer {
	c.ID = id
	return c
}

// MergeCustomer replaces every mutable field of existing with the value from incoming.
// The id of existing is always kept.
func MergeCustomer(existing, incoming Customer) Customer {
	return Customer{
		ID:         existing.ID,
		Names:      incoming.Names,
		Lastnames:  incoming.Lastnames,
		Birthday:   incoming.Birthday,
		URLPicture: incoming.URLPicture,
	}
}

// WithCustomerPicture sets the picture URL and leaves every other field untouched.
func WithCustomerPicture(existing Customer, url string) Customer {
	existing.URLPicture = url
	return existing
}

type CustomerModel struct {
	*sqlModel[Customer]
}

func NewCustomerModel(db *sql.DB) CustomerModel {
	return CustomerModel{&sqlModel[Customer]{
		db: db,
		table: table[Customer]{
			name:    "customers",
			columns: []string{"names", "lastnames", "birthday", "url_picture"},
			fields: func(c *Customer) []any {
				return []any{&c.ID, &c.Names, &c.Lastnames, &c.Birthday, &c.URLPicture}
			},
			values: func(c Customer) []any {
				return []any{c.Names, c.Lastnames, c.Birthday, c.URLPicture}
			},
		},
	}}
}
