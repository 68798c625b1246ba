package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/senyabanana/licitagora/internal/models"

	"github.com/ledongthuc/pdf"
)

var (
	// ErrUnsupportedFormat возвращается для файлов, из которых текст не извлекается.
	ErrUnsupportedFormat = errors.New("unsupported format for text extraction")
	// ErrNoText возвращается, когда документ не содержит текстового слоя.
	ErrNoText = errors.New("no text content extracted")
)

// TextExtractor извлекает простой текст из загруженного файла.
type TextExtractor interface {
	CanExtract(file models.UploadedFile) bool
	ExtractText(file models.UploadedFile) (string, error)
}

// DocumentTextExtractor поддерживает PDF и обычный текст.
type DocumentTextExtractor struct{}

// NewDocumentTextExtractor создаёт новый экземпляр DocumentTextExtractor.
func NewDocumentTextExtractor() *DocumentTextExtractor {
	return &DocumentTextExtractor{}
}

// CanExtract сообщает, поддерживается ли формат файла.
func (e *DocumentTextExtractor) CanExtract(file models.UploadedFile) bool {
	return isPDF(file) || isPlainText(file)
}

// ExtractText возвращает текст файла.
func (e *DocumentTextExtractor) ExtractText(file models.UploadedFile) (string, error) {
	switch {
	case isPDF(file):
		return extractPDFText(file.Content)
	case isPlainText(file):
		if !utf8.Valid(file.Content) {
			return "", fmt.Errorf("%w: text is not valid UTF-8", ErrUnsupportedFormat)
		}
		return string(file.Content), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, file.ContentType)
	}
}

func isPDF(file models.UploadedFile) bool {
	return strings.HasPrefix(file.ContentType, "application/pdf") ||
		strings.EqualFold(filepath.Ext(file.FileName), ".pdf")
}

func isPlainText(file models.UploadedFile) bool {
	return strings.HasPrefix(file.ContentType, "text/plain") ||
		strings.EqualFold(filepath.Ext(file.FileName), ".txt")
}

// extractPDFText собирает текст всех страниц; страницы с ошибками пропускаются.
func extractPDFText(content []byte) (text string, err error) {
	// библиотека паникует на некоторых повреждённых файлах
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("open PDF: malformed document: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open PDF: %w", err)
	}

	var textBuilder strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if pageText != "" {
			if textBuilder.Len() > 0 {
				textBuilder.WriteString("\n")
			}
			textBuilder.WriteString(pageText)
		}
	}

	if strings.TrimSpace(textBuilder.String()) == "" {
		return "", ErrNoText
	}
	return textBuilder.String(), nil
}
