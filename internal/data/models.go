package data

import (
	"database/sql"
	"errors"
)

var ErrRecordNotFound = errors.New("record not found")

type Models struct {
	Customers Store[Customer]
	Dishes    Store[Dish]
}

func NewModels(initDb *sql.DB) Models {
	return Models{
		Customers: NewCustomerModel(initDb),
		Dishes:    NewDishModel(initDb),
	}
}

func NewMemoryModels() Models {
	return Models{
		Customers: NewMemoryStore[Customer](),
		Dishes:    NewMemoryStore[Dish](),
	}
}
