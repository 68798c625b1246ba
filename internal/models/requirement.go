package models

import "time"

// Requirement - требование к документации участника по тендеру.
type Requirement struct {
	ID          string    `json:"id"`
	TenderID    string    `json:"tenderId"`
	Description string    `json:"description"`
	Category    *string   `json:"category"`
	Satisfied   bool      `json:"satisfied"`
	DocumentID  *string   `json:"documentId"`
	Notes       *string   `json:"notes"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// RequirementRequest представляет структуру запроса для создания или обновления требования.
type RequirementRequest struct {
	Description string  `json:"description"`
	Category    *string `json:"category"`
	Satisfied   *bool   `json:"satisfied"`
	DocumentID  *string `json:"documentId"`
	Notes       *string `json:"notes"`
}
