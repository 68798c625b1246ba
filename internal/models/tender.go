package models

import "time"

// TenderStatus - статус тендера.
type TenderStatus string

const (
	InAnalysisTender TenderStatus = "EM_ANALISE"   // Тендер на анализе
	InProgressTender TenderStatus = "EM_ANDAMENTO" // Тендер в работе
	FinalizedTender  TenderStatus = "FINALIZADA"   // Тендер завершён (итог зафиксирован)
	CancelledTender  TenderStatus = "CANCELADA"    // Тендер отменён
)

// TenderStatuses - все допустимые значения статуса.
var TenderStatuses = []TenderStatus{InAnalysisTender, InProgressTender, FinalizedTender, CancelledTender}

// Tender представляет модель тендера (licitação).
type Tender struct {
	ID              string       `json:"id"`
	Number          string       `json:"number"`
	ClientID        *string      `json:"clientId"`
	IssuingBody     string       `json:"issuingBody"`
	Object          string       `json:"object"`
	Modality        string       `json:"modality"`
	ActivitySector  string       `json:"activitySector"`
	OpeningDate     time.Time    `json:"openingDate"`
	ClosingDate     *time.Time   `json:"closingDate"`
	EstimatedValue  float64      `json:"estimatedValue"`
	EstimatedProfit float64      `json:"estimatedProfit"`
	Status          TenderStatus `json:"status"`
	FinalValue      *float64     `json:"finalValue"`
	FinalProfit     *float64     `json:"finalProfit"`
	Won             *bool        `json:"won"`
	LossReason      *string      `json:"lossReason"`
	ClosedAt        *time.Time   `json:"closedAt"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

// IsFinalized сообщает, что тендер больше нельзя изменять.
func (t *Tender) IsFinalized() bool {
	return t.Status == FinalizedTender
}

// TenderRequest представляет структуру запроса для создания или обновления тендера.
type TenderRequest struct {
	Number          string      `json:"number"`
	ClientID        string      `json:"clientId"`
	IssuingBody     string      `json:"issuingBody"`
	Object          string      `json:"object"`
	Modality        string      `json:"modality"`
	ActivitySector  string      `json:"activitySector"`
	OpeningDate     string      `json:"openingDate"`
	ClosingDate     string      `json:"closingDate"`
	EstimatedValue  NumberField `json:"estimatedValue"`
	EstimatedProfit NumberField `json:"estimatedProfit"`
}

// TenderFields - провалидированные поля тендера, передаваемые в репозиторий.
type TenderFields struct {
	Number          string
	ClientID        string
	IssuingBody     string
	Object          string
	Modality        string
	ActivitySector  string
	OpeningDate     time.Time
	ClosingDate     *time.Time
	EstimatedValue  float64
	EstimatedProfit float64
}

// TenderCloseRequest - запрос на фиксацию итога тендера.
type TenderCloseRequest struct {
	FinalValue  NumberField `json:"finalValue"`
	FinalProfit NumberField `json:"finalProfit"`
	Won         *bool       `json:"won"`
	LossReason  *string     `json:"lossReason"`
}

// TenderClosing - провалидированный итог тендера.
type TenderClosing struct {
	FinalValue  float64
	FinalProfit float64
	Won         bool
	LossReason  *string
	ClosedAt    time.Time
}

// TenderFilter - параметры выборки списка тендеров.
type TenderFilter struct {
	Limit    int
	Offset   int
	Statuses []string
	ClientID string
}

// TenderStatusChange - запись истории смены статуса.
type TenderStatusChange struct {
	ID         string       `json:"id"`
	TenderID   string       `json:"tenderId"`
	FromStatus TenderStatus `json:"fromStatus"`
	ToStatus   TenderStatus `json:"toStatus"`
	ChangedAt  time.Time    `json:"changedAt"`
}
