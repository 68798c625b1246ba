package extractor

import (
	"testing"

	"github.com/senyabanana/licitagora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentTextExtractor_CanExtract(t *testing.T) {
	e := NewDocumentTextExtractor()

	assert.True(t, e.CanExtract(models.UploadedFile{FileName: "edital.PDF"}))
	assert.True(t, e.CanExtract(models.UploadedFile{FileName: "edital", ContentType: "application/pdf"}))
	assert.True(t, e.CanExtract(models.UploadedFile{FileName: "edital.txt"}))
	assert.True(t, e.CanExtract(models.UploadedFile{FileName: "edital", ContentType: "text/plain; charset=utf-8"}))
	assert.False(t, e.CanExtract(models.UploadedFile{FileName: "edital.docx", ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document"}))
}

func TestDocumentTextExtractor_PlainText(t *testing.T) {
	e := NewDocumentTextExtractor()

	text, err := e.ExtractText(models.UploadedFile{FileName: "edital.txt", Content: []byte("Qualificação técnica: atestado.")})
	require.NoError(t, err)
	assert.Equal(t, "Qualificação técnica: atestado.", text)

	_, err = e.ExtractText(models.UploadedFile{FileName: "edital.txt", Content: []byte{0xff, 0xfe, 0xfd}})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDocumentTextExtractor_Failures(t *testing.T) {
	e := NewDocumentTextExtractor()

	_, err := e.ExtractText(models.UploadedFile{FileName: "edital.pdf", Content: []byte("definitely not a pdf")})
	assert.Error(t, err)

	_, err = e.ExtractText(models.UploadedFile{FileName: "planilha.xlsx", ContentType: "application/zip"})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
