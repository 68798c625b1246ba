package models

import "time"

// TenderDocumentType - тег типа документа тендера.
type TenderDocumentType string

const (
	NoticeDocument   TenderDocumentType = "EDITAL"   // Извещение (edital), не более одного на тендер
	ProposalDocument TenderDocumentType = "PROPOSTA" // Коммерческое предложение
	MinutesDocument  TenderDocumentType = "ATA"      // Протокол
	ContractDocument TenderDocumentType = "CONTRATO" // Контракт
	OtherDocument    TenderDocumentType = "OUTRO"
)

// TenderDocumentTypes - все допустимые типы документов тендера.
var TenderDocumentTypes = []TenderDocumentType{NoticeDocument, ProposalDocument, MinutesDocument, ContractDocument, OtherDocument}

// IsValid сообщает, входит ли тип в справочник.
func (t TenderDocumentType) IsValid() bool {
	for _, known := range TenderDocumentTypes {
		if t == known {
			return true
		}
	}
	return false
}

// TenderDocument - файл, прикреплённый к тендеру.
type TenderDocument struct {
	ID          string             `json:"id"`
	TenderID    string             `json:"tenderId"`
	Type        TenderDocumentType `json:"type"`
	FileName    string             `json:"fileName"`
	ContentType string             `json:"contentType"`
	Size        int64              `json:"size"`
	StoragePath string             `json:"-"`
	Description *string            `json:"description"`
	UploadedAt  time.Time          `json:"uploadedAt"`
}

// IsNotice сообщает, является ли документ извещением.
func (d *TenderDocument) IsNotice() bool {
	return d.Type == NoticeDocument
}

// DocumentType - элемент справочника типов документов клиента.
type DocumentType struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ClientDocument - файл, прикреплённый к клиенту.
type ClientDocument struct {
	ID               string     `json:"id"`
	ClientID         string     `json:"clientId"`
	DocumentTypeID   int        `json:"documentTypeId"`
	DocumentTypeName string     `json:"documentTypeName"`
	FileName         string     `json:"fileName"`
	ContentType      string     `json:"contentType"`
	Size             int64      `json:"size"`
	StoragePath      string     `json:"-"`
	ExpiresAt        *time.Time `json:"expiresAt"`
	DaysToExpiry     *int       `json:"daysToExpiry,omitempty"`
	UploadedAt       time.Time  `json:"uploadedAt"`
}

// UploadedFile - содержимое загруженного файла, не зависящее от транспорта.
type UploadedFile struct {
	FileName    string
	ContentType string
	Content     []byte
}

// TenderDocumentUpload - метаданные загрузки документа тендера.
type TenderDocumentUpload struct {
	Type        string
	Description *string
	File        UploadedFile
}

// ClientDocumentUpload - метаданные загрузки документа клиента.
type ClientDocumentUpload struct {
	DocumentTypeID int
	ExpiresAt      string
	File           UploadedFile
}

// TenderDocumentUploadResult - результат загрузки: документ и число извлечённых требований.
type TenderDocumentUploadResult struct {
	Document              *TenderDocument `json:"document"`
	RequirementsGenerated int             `json:"requirementsGenerated"`
}

// TenderDocumentDeleteResult сообщает, был ли выполнен каскад требований.
type TenderDocumentDeleteResult struct {
	Document            *TenderDocument `json:"document"`
	Cascaded            bool            `json:"cascaded"`
	RequirementsDeleted int64           `json:"requirementsDeleted"`
}
