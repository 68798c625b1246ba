package models

import "time"

// ImportedDeadlineNotes - метка дедлайнов, созданных импортом из даты закрытия тендера.
const ImportedDeadlineNotes = "Deadline imported automatically from the tender's closing date."

// Deadline - датированное напоминание, опционально привязанное к тендеру.
type Deadline struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Date      time.Time `json:"date"`
	Notes     *string   `json:"notes"`
	TenderID  *string   `json:"tenderId"`
	CreatedAt time.Time `json:"createdAt"`
}

// DeadlineRequest представляет структуру запроса для создания или обновления дедлайна.
type DeadlineRequest struct {
	Title    string  `json:"title"`
	Date     string  `json:"date"`
	Notes    *string `json:"notes"`
	TenderID *string `json:"tenderId"`
}

// DeadlineImportResult - итог импорта дедлайнов.
type DeadlineImportResult struct {
	Imported int `json:"imported"`
}

// Summary - сводный отчёт по тендерам.
type Summary struct {
	ByStatus           map[TenderStatus]int `json:"byStatus"`
	Won                int                  `json:"won"`
	Lost               int                  `json:"lost"`
	OpenEstimatedValue float64              `json:"openEstimatedValue"`
	WonFinalValue      float64              `json:"wonFinalValue"`
	WonFinalProfit     float64              `json:"wonFinalProfit"`
	UpcomingDeadlines  int                  `json:"upcomingDeadlines"`
	ExpiringClientDocs int                  `json:"expiringClientDocuments"`
}
