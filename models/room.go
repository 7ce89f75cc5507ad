package models

import "github.com/shopspring/decimal"

// Room - карточка сдаваемой комнаты, как ее отдает GET /rooms/{id}/.
type Room struct {
	ID            int64           `json:"id"`
	Owner         int64           `json:"user"` // ID владельца
	Rent          decimal.Decimal `json:"rent"` // Цена за сутки
	Address       string          `json:"address"`
	NumberOfRooms int             `json:"number_of_rooms"`
	Bathroom      string          `json:"bathroom"`
	PhoneNumber   string          `json:"phoneNumber"`
	OtherDetails  string          `json:"other_details"`
	Image         string          `json:"image"`
	Image1        string          `json:"image1"`
	Image2        string          `json:"image2"`
	Image3        string          `json:"image3"`
}

// Images возвращает ключи заполненных изображений в порядке отображения.
func (r Room) Images() []string {
	images := make([]string, 0, 4) //nolint:mnd // image, image1..image3
	for _, key := range []string{r.Image, r.Image1, r.Image2, r.Image3} {
		if key != "" {
			images = append(images, key)
		}
	}
	return images
}

// BookingRequest - запись о бронировании для POST /handle-rent/.
type BookingRequest struct {
	RentID   int64  // ID комнаты
	RentFrom string // Дата начала, YYYY-MM-DD
	RentTo   string // Дата окончания, YYYY-MM-DD
}
