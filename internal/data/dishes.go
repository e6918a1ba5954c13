package data

import "database/sql"

type Dish struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	Status bool    `json:"status"`
}

func (d Dish) ResourceID() string {
	return d.ID
}

func (d Dish) WithID(id string) Dish {
	d.ID = id
	return d
}

// MergeDish replaces every mutable field of existing with the value from incoming.
// The id of existing is always kept.
func MergeDish(existing, incoming Dish) Dish {
	return Dish{
		ID:     existing.ID,
		Name:   incoming.Name,
		Price:  incoming.Price,
		Status: incoming.Status,
	}
}

type DishModel struct {
	*sqlModel[Dish]
}

func NewDishModel(db *sql.DB) DishModel {
	return DishModel{&sqlModel[Dish]{
		db: db,
		table: table[Dish]{
			name:    "dishes",
			columns: []string{"name", "price", "status"},
			fields: func(d *Dish) []any {
				return []any{&d.ID, &d.Name, &d.Price, &d.Status}
			},
			values: func(d Dish) []any {
				return []any{d.Name, d.Price, d.Status}
			},
		},
	}}
}
