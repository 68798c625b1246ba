package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/senyabanana/licitagora/internal/extractor"
	"github.com/senyabanana/licitagora/internal/metrics"
	"github.com/senyabanana/licitagora/internal/models"
	"github.com/senyabanana/licitagora/internal/repository"
	"github.com/senyabanana/licitagora/internal/storage"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

var errInjected = errors.New("injected failure")

// memStore - хранилище в памяти, реализующее все интерфейсы репозиториев.
type memStore struct {
	clients      map[string]models.Client
	tenders      map[string]models.Tender
	history      []models.TenderStatusChange
	tenderDocs   map[string]models.TenderDocument
	docTypes     map[int]models.DocumentType
	clientDocs   map[string]models.ClientDocument
	requirements map[string]models.Requirement
	deadlines    map[string]models.Deadline

	failDeleteTenderDocument error
	failCreateDeadline       error
}

func newMemStore() *memStore {
	return &memStore{
		clients:      map[string]models.Client{},
		tenders:      map[string]models.Tender{},
		tenderDocs:   map[string]models.TenderDocument{},
		docTypes:     map[int]models.DocumentType{1: {ID: 1, Name: "Contrato Social"}, 2: {ID: 2, Name: "CND Federal"}},
		clientDocs:   map[string]models.ClientDocument{},
		requirements: map[string]models.Requirement{},
		deadlines:    map[string]models.Deadline{},
	}
}

func (m *memStore) repos() repository.Repositories {
	return repository.Repositories{Clients: m, Tenders: m, Documents: m, Requirements: m, Deadlines: m}
}

func copyMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func (m *memStore) snapshot() memStore {
	return memStore{
		clients:      copyMap(m.clients),
		tenders:      copyMap(m.tenders),
		history:      append([]models.TenderStatusChange(nil), m.history...),
		tenderDocs:   copyMap(m.tenderDocs),
		docTypes:     copyMap(m.docTypes),
		clientDocs:   copyMap(m.clientDocs),
		requirements: copyMap(m.requirements),
		deadlines:    copyMap(m.deadlines),
	}
}

func (m *memStore) restore(s memStore) {
	m.clients = s.clients
	m.tenders = s.tenders
	m.history = s.history
	m.tenderDocs = s.tenderDocs
	m.docTypes = s.docTypes
	m.clientDocs = s.clientDocs
	m.requirements = s.requirements
	m.deadlines = s.deadlines
}

// memTransactor откатывает хранилище к снимку, если fn вернула ошибку.
type memTransactor struct {
	store *memStore
}

func (t *memTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	snap := t.store.snapshot()
	if err := fn(ctx, t.store.repos()); err != nil {
		t.store.restore(snap)
		return err
	}
	return nil
}

func notFound(op string) error {
	return errors.Join(errors.New(op), repository.ErrNotFound)
}

// clients

func (m *memStore) GetClients(ctx context.Context, limit, offset int) ([]models.Client, error) {
	clients := make([]models.Client, 0, len(m.clients))
	for _, c := range m.clients {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].LegalName < clients[j].LegalName })
	if offset >= len(clients) {
		return []models.Client{}, nil
	}
	end := offset + limit
	if end > len(clients) {
		end = len(clients)
	}
	return clients[offset:end], nil
}

func (m *memStore) GetClientById(ctx context.Context, clientId string) (*models.Client, error) {
	c, ok := m.clients[clientId]
	if !ok {
		return nil, notFound("get client")
	}
	return &c, nil
}

func (m *memStore) CreateClient(ctx context.Context, req models.ClientRequest) (*models.Client, error) {
	for _, c := range m.clients {
		if c.TaxID == req.TaxID {
			return nil, errors.Join(errors.New("create client"), repository.ErrDuplicate)
		}
	}
	c := models.Client{
		ID:              uuid.New().String(),
		LegalName:       req.LegalName,
		TradeName:       req.TradeName,
		TaxID:           req.TaxID,
		Email:           req.Email,
		Phone:           req.Phone,
		Address:         req.Address,
		ActivitySectors: req.ActivitySectors,
	}
	m.clients[c.ID] = c
	return &c, nil
}

func (m *memStore) UpdateClient(ctx context.Context, clientId string, req models.ClientRequest) (*models.Client, error) {
	c, ok := m.clients[clientId]
	if !ok {
		return nil, notFound("update client")
	}
	for id, other := range m.clients {
		if id != clientId && other.TaxID == req.TaxID {
			return nil, errors.Join(errors.New("update client"), repository.ErrDuplicate)
		}
	}
	c.LegalName, c.TradeName, c.TaxID = req.LegalName, req.TradeName, req.TaxID
	c.Email, c.Phone, c.Address, c.ActivitySectors = req.Email, req.Phone, req.Address, req.ActivitySectors
	m.clients[clientId] = c
	return &c, nil
}

func (m *memStore) DeleteClient(ctx context.Context, clientId string) error {
	if _, ok := m.clients[clientId]; !ok {
		return notFound("delete client")
	}
	delete(m.clients, clientId)
	for id, doc := range m.clientDocs {
		if doc.ClientID == clientId {
			delete(m.clientDocs, id)
		}
	}
	for id, t := range m.tenders {
		if t.ClientID != nil && *t.ClientID == clientId {
			t.ClientID = nil
			m.tenders[id] = t
		}
	}
	return nil
}

// tenders

func (m *memStore) GetTenders(ctx context.Context, filter models.TenderFilter) ([]models.Tender, error) {
	var tenders []models.Tender
	for _, t := range m.tenders {
		if len(filter.Statuses) > 0 && !containsString(filter.Statuses, string(t.Status)) {
			continue
		}
		if filter.ClientID != "" && (t.ClientID == nil || *t.ClientID != filter.ClientID) {
			continue
		}
		tenders = append(tenders, t)
	}
	return tenders, nil
}

func containsString(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}

func (m *memStore) GetTenderById(ctx context.Context, tenderId string) (*models.Tender, error) {
	t, ok := m.tenders[tenderId]
	if !ok {
		return nil, notFound("get tender")
	}
	return &t, nil
}

func applyFields(t *models.Tender, fields models.TenderFields) {
	clientId := fields.ClientID
	t.Number = fields.Number
	t.ClientID = &clientId
	t.IssuingBody = fields.IssuingBody
	t.Object = fields.Object
	t.Modality = fields.Modality
	t.ActivitySector = fields.ActivitySector
	t.OpeningDate = fields.OpeningDate
	t.ClosingDate = fields.ClosingDate
	t.EstimatedValue = fields.EstimatedValue
	t.EstimatedProfit = fields.EstimatedProfit
}

func (m *memStore) CreateTender(ctx context.Context, fields models.TenderFields) (*models.Tender, error) {
	t := models.Tender{ID: uuid.New().String(), Status: models.InAnalysisTender}
	applyFields(&t, fields)
	m.tenders[t.ID] = t
	return &t, nil
}

func (m *memStore) EditTender(ctx context.Context, tenderId string, fields models.TenderFields) (*models.Tender, error) {
	t, ok := m.tenders[tenderId]
	if !ok {
		return nil, notFound("edit tender")
	}
	applyFields(&t, fields)
	m.tenders[tenderId] = t
	return &t, nil
}

func (m *memStore) UpdateTenderStatus(ctx context.Context, tenderId string, status models.TenderStatus) (*models.Tender, error) {
	t, ok := m.tenders[tenderId]
	if !ok {
		return nil, notFound("update tender status")
	}
	t.Status = status
	m.tenders[tenderId] = t
	return &t, nil
}

func (m *memStore) CloseTender(ctx context.Context, tenderId string, closing models.TenderClosing) (*models.Tender, error) {
	t, ok := m.tenders[tenderId]
	if !ok {
		return nil, notFound("close tender")
	}
	won := closing.Won
	closedAt := closing.ClosedAt
	t.Status = models.FinalizedTender
	t.FinalValue = &closing.FinalValue
	t.FinalProfit = &closing.FinalProfit
	t.Won = &won
	t.LossReason = closing.LossReason
	t.ClosedAt = &closedAt
	m.tenders[tenderId] = t
	return &t, nil
}

func (m *memStore) DeleteTender(ctx context.Context, tenderId string) error {
	if _, ok := m.tenders[tenderId]; !ok {
		return notFound("delete tender")
	}
	delete(m.tenders, tenderId)
	for id, doc := range m.tenderDocs {
		if doc.TenderID == tenderId {
			delete(m.tenderDocs, id)
		}
	}
	for id, req := range m.requirements {
		if req.TenderID == tenderId {
			delete(m.requirements, id)
		}
	}
	return nil
}

func (m *memStore) AddStatusChange(ctx context.Context, change models.TenderStatusChange) error {
	m.history = append(m.history, change)
	return nil
}

func (m *memStore) GetStatusHistory(ctx context.Context, tenderId string) ([]models.TenderStatusChange, error) {
	var history []models.TenderStatusChange
	for _, change := range m.history {
		if change.TenderID == tenderId {
			history = append(history, change)
		}
	}
	return history, nil
}

func (m *memStore) GetTendersClosingInProgress(ctx context.Context) ([]models.Tender, error) {
	var tenders []models.Tender
	for _, t := range m.tenders {
		if t.Status == models.InProgressTender && t.ClosingDate != nil {
			tenders = append(tenders, t)
		}
	}
	return tenders, nil
}

func (m *memStore) GetSummary(ctx context.Context) (*models.Summary, error) {
	summary := &models.Summary{ByStatus: map[models.TenderStatus]int{}}
	for _, t := range m.tenders {
		summary.ByStatus[t.Status]++
		switch {
		case t.Won != nil && *t.Won:
			summary.Won++
			summary.WonFinalValue += *t.FinalValue
			summary.WonFinalProfit += *t.FinalProfit
		case t.Won != nil:
			summary.Lost++
		case t.Status == models.InAnalysisTender || t.Status == models.InProgressTender:
			summary.OpenEstimatedValue += t.EstimatedValue
		}
	}
	return summary, nil
}

// documents

func (m *memStore) GetTenderDocuments(ctx context.Context, tenderId string) ([]models.TenderDocument, error) {
	var docs []models.TenderDocument
	for _, doc := range m.tenderDocs {
		if doc.TenderID == tenderId {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (m *memStore) GetTenderDocumentById(ctx context.Context, documentId string) (*models.TenderDocument, error) {
	doc, ok := m.tenderDocs[documentId]
	if !ok {
		return nil, notFound("get tender document")
	}
	return &doc, nil
}

func (m *memStore) GetNoticeDocument(ctx context.Context, tenderId string) (*models.TenderDocument, error) {
	for _, doc := range m.tenderDocs {
		if doc.TenderID == tenderId && doc.IsNotice() {
			return &doc, nil
		}
	}
	return nil, notFound("get notice document")
}

func (m *memStore) CreateTenderDocument(ctx context.Context, doc *models.TenderDocument) error {
	if doc.IsNotice() {
		if _, err := m.GetNoticeDocument(ctx, doc.TenderID); err == nil {
			return errors.Join(errors.New("create tender document"), repository.ErrDuplicate)
		}
	}
	m.tenderDocs[doc.ID] = *doc
	return nil
}

func (m *memStore) DeleteTenderDocument(ctx context.Context, documentId string) error {
	if m.failDeleteTenderDocument != nil {
		return m.failDeleteTenderDocument
	}
	if _, ok := m.tenderDocs[documentId]; !ok {
		return notFound("delete tender document")
	}
	delete(m.tenderDocs, documentId)
	return nil
}

func (m *memStore) GetDocumentTypes(ctx context.Context) ([]models.DocumentType, error) {
	types := make([]models.DocumentType, 0, len(m.docTypes))
	for _, dt := range m.docTypes {
		types = append(types, dt)
	}
	sort.Slice(types, func(i, j int) bool { return types[i].ID < types[j].ID })
	return types, nil
}

func (m *memStore) GetDocumentTypeById(ctx context.Context, typeId int) (*models.DocumentType, error) {
	dt, ok := m.docTypes[typeId]
	if !ok {
		return nil, notFound("get document type")
	}
	return &dt, nil
}

func (m *memStore) GetClientDocuments(ctx context.Context, clientId string) ([]models.ClientDocument, error) {
	var docs []models.ClientDocument
	for _, doc := range m.clientDocs {
		if doc.ClientID == clientId {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (m *memStore) GetClientDocumentById(ctx context.Context, documentId string) (*models.ClientDocument, error) {
	doc, ok := m.clientDocs[documentId]
	if !ok {
		return nil, notFound("get client document")
	}
	return &doc, nil
}

func (m *memStore) CreateClientDocument(ctx context.Context, doc *models.ClientDocument) error {
	m.clientDocs[doc.ID] = *doc
	return nil
}

func (m *memStore) DeleteClientDocument(ctx context.Context, documentId string) error {
	if _, ok := m.clientDocs[documentId]; !ok {
		return notFound("delete client document")
	}
	delete(m.clientDocs, documentId)
	return nil
}

// requirements

func (m *memStore) GetRequirements(ctx context.Context, tenderId string) ([]models.Requirement, error) {
	reqs := []models.Requirement{}
	for _, req := range m.requirements {
		if req.TenderID == tenderId {
			reqs = append(reqs, req)
		}
	}
	return reqs, nil
}

func (m *memStore) GetRequirementById(ctx context.Context, requirementId string) (*models.Requirement, error) {
	req, ok := m.requirements[requirementId]
	if !ok {
		return nil, notFound("get requirement")
	}
	return &req, nil
}

func (m *memStore) CreateRequirement(ctx context.Context, req *models.Requirement) error {
	m.requirements[req.ID] = *req
	return nil
}

func (m *memStore) UpdateRequirement(ctx context.Context, req *models.Requirement) error {
	if _, ok := m.requirements[req.ID]; !ok {
		return notFound("update requirement")
	}
	m.requirements[req.ID] = *req
	return nil
}

func (m *memStore) DeleteRequirement(ctx context.Context, requirementId string) error {
	if _, ok := m.requirements[requirementId]; !ok {
		return notFound("delete requirement")
	}
	delete(m.requirements, requirementId)
	return nil
}

func (m *memStore) DeleteTenderRequirements(ctx context.Context, tenderId string) (int64, error) {
	var deleted int64
	for id, req := range m.requirements {
		if req.TenderID == tenderId {
			delete(m.requirements, id)
			deleted++
		}
	}
	return deleted, nil
}

// deadlines

func (m *memStore) GetDeadlines(ctx context.Context, from, to *time.Time) ([]models.Deadline, error) {
	deadlines := []models.Deadline{}
	for _, d := range m.deadlines {
		if from != nil && d.Date.Before(*from) {
			continue
		}
		if to != nil && d.Date.After(*to) {
			continue
		}
		deadlines = append(deadlines, d)
	}
	sort.Slice(deadlines, func(i, j int) bool { return deadlines[i].Date.Before(deadlines[j].Date) })
	return deadlines, nil
}

func (m *memStore) GetDeadlineById(ctx context.Context, deadlineId string) (*models.Deadline, error) {
	d, ok := m.deadlines[deadlineId]
	if !ok {
		return nil, notFound("get deadline")
	}
	return &d, nil
}

func (m *memStore) CreateDeadline(ctx context.Context, deadline *models.Deadline) error {
	if m.failCreateDeadline != nil {
		return m.failCreateDeadline
	}
	m.deadlines[deadline.ID] = *deadline
	return nil
}

func (m *memStore) UpdateDeadline(ctx context.Context, deadline *models.Deadline) error {
	if _, ok := m.deadlines[deadline.ID]; !ok {
		return notFound("update deadline")
	}
	m.deadlines[deadline.ID] = *deadline
	return nil
}

func (m *memStore) DeleteDeadline(ctx context.Context, deadlineId string) error {
	if _, ok := m.deadlines[deadlineId]; !ok {
		return notFound("delete deadline")
	}
	delete(m.deadlines, deadlineId)
	return nil
}

func (m *memStore) HasTenderDeadline(ctx context.Context, tenderId, notes string) (bool, error) {
	for _, d := range m.deadlines {
		if d.TenderID != nil && *d.TenderID == tenderId && d.Notes != nil && *d.Notes == notes {
			return true, nil
		}
	}
	return false, nil
}

// fixture собирает сервисы поверх хранилища в памяти.
type fixture struct {
	store   *memStore
	fs      afero.Fs
	files   *storage.FsStorage
	metrics *metrics.Metrics

	tenders      *TenderService
	clients      *ClientService
	documents    *DocumentService
	requirements *RequirementService
	deadlines    *DeadlineService
	reports      *ReportService
}

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newFixture() *fixture {
	store := newMemStore()
	fs := afero.NewMemMapFs()
	files := storage.NewFsStorage(fs)
	m := metrics.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tx := &memTransactor{store: store}
	repos := store.repos()

	f := &fixture{
		store:        store,
		fs:           fs,
		files:        files,
		metrics:      m,
		tenders:      NewTenderService(repos, tx, files, logger, m),
		clients:      NewClientService(repos, files, logger),
		documents:    NewDocumentService(repos, tx, files, extractor.NewDocumentTextExtractor(), logger, m),
		requirements: NewRequirementService(repos, logger),
		deadlines:    NewDeadlineService(repos, logger, m),
		reports:      NewReportService(repos, logger),
	}
	now := func() time.Time { return fixedNow }
	f.tenders.now = now
	f.documents.now = now
	f.requirements.now = now
	f.deadlines.now = now
	return f
}

func (f *fixture) addClient(name string) models.Client {
	c := models.Client{
		ID:              uuid.New().String(),
		LegalName:       name,
		TaxID:           strings.Repeat("1", 14),
		ActivitySectors: []string{},
	}
	f.store.clients[c.ID] = c
	return c
}

func (f *fixture) addTender(clientId string, status models.TenderStatus, closing *time.Time) models.Tender {
	t := models.Tender{
		ID:              uuid.New().String(),
		Number:          "PE 012/2024",
		ClientID:        &clientId,
		IssuingBody:     "Prefeitura de Campinas",
		Object:          "Aquisição de material de escritório",
		Modality:        "Pregão Eletrônico",
		ActivitySector:  "Papelaria",
		OpeningDate:     time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		ClosingDate:     closing,
		EstimatedValue:  1000,
		EstimatedProfit: 200,
		Status:          status,
	}
	f.store.tenders[t.ID] = t
	return t
}

func validTenderRequest(clientId string) models.TenderRequest {
	return models.TenderRequest{
		Number:          "PE 012/2024",
		ClientID:        clientId,
		IssuingBody:     "Prefeitura de Campinas",
		Object:          "Aquisição de material de escritório",
		Modality:        "Pregão Eletrônico",
		ActivitySector:  "Papelaria",
		OpeningDate:     "2024-01-10",
		ClosingDate:     "2024-01-15",
		EstimatedValue:  models.NumberFieldOf(1500.5),
		EstimatedProfit: "300,25",
	}
}

func ptr[T any](v T) *T {
	return &v
}
