package data

import (
	"DiningApi/internal/assert"
	"testing"
	"time"
)

func TestMergeCustomer(t *testing.T) {
	existing := Customer{
		ID:         "c-1",
		Names:      "Ana",
		Lastnames:  "Diaz",
		Birthday:   NewDate(1990, time.March, 2),
		URLPicture: "http://media/old.png",
	}

	tests := []struct {
		name     string
		incoming Customer
		want     Customer
	}{
		{
			name:     "Replace All Fields",
			incoming: Customer{Names: "Eva", Lastnames: "Ruiz", Birthday: NewDate(2001, time.May, 9), URLPicture: "http://media/new.png"},
			want:     Customer{ID: "c-1", Names: "Eva", Lastnames: "Ruiz", Birthday: NewDate(2001, time.May, 9), URLPicture: "http://media/new.png"},
		},
		{
			name:     "Incoming ID Ignored",
			incoming: Customer{ID: "other", Names: "Eva"},
			want:     Customer{ID: "c-1", Names: "Eva"},
		},
		{
			name:     "Empty Values Replace",
			incoming: Customer{},
			want:     Customer{ID: "c-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, MergeCustomer(existing, tt.incoming), tt.want)
		})
	}
}

func TestMergeDish(t *testing.T) {
	existing := Dish{ID: "d-1", Name: "Ceviche", Price: 25.5, Status: true}

	got := MergeDish(existing, Dish{ID: "d-2", Name: "Lomo", Price: 30, Status: false})

	assert.Equal(t, got, Dish{ID: "d-1", Name: "Lomo", Price: 30, Status: false})
}

func TestWithCustomerPicture(t *testing.T) {
	existing := Customer{ID: "c-1", Names: "Ana", Lastnames: "Diaz", Birthday: NewDate(1990, time.March, 2)}

	got := WithCustomerPicture(existing, "http://media/pic.jpg")

	assert.Equal(t, got.URLPicture, "http://media/pic.jpg")
	assert.Equal(t, got.ID, existing.ID)
	assert.Equal(t, got.Names, existing.Names)
	assert.Equal(t, got.Lastnames, existing.Lastnames)
	assert.Equal(t, got.Birthday, existing.Birthday)
}
