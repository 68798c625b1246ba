package models

import "time"

// Client представляет компанию-участника торгов.
type Client struct {
	ID              string    `json:"id"`
	LegalName       string    `json:"legalName"`
	TradeName       *string   `json:"tradeName"`
	TaxID           string    `json:"taxId"`
	Email           *string   `json:"email"`
	Phone           *string   `json:"phone"`
	Address         *string   `json:"address"`
	ActivitySectors []string  `json:"activitySectors"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// ClientRequest представляет структуру запроса для создания или обновления клиента.
type ClientRequest struct {
	LegalName       string   `json:"legalName"`
	TradeName       *string  `json:"tradeName"`
	TaxID           string   `json:"taxId"`
	Email           *string  `json:"email"`
	Phone           *string  `json:"phone"`
	Address         *string  `json:"address"`
	ActivitySectors []string `json:"activitySectors"`
}
