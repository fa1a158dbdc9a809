package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
)

type fakeTicketRepo struct {
	tickets     map[int64]*domain.Ticket
	nextID      int64
	lastCreated []domain.Message
	lastFilter  repository.AnalystPageFilter
	page        []domain.Ticket
	total       int
	failCreate  error
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[int64]*domain.Ticket{}, nextID: 1}
}

func (f *fakeTicketRepo) put(ticket domain.Ticket) *domain.Ticket {
	if ticket.ID == 0 {
		ticket.ID = f.nextID
		f.nextID++
	}
	stored := ticket
	f.tickets[stored.ID] = &stored
	return &stored
}

func (f *fakeTicketRepo) CreateWithConversation(ctx context.Context, ticket *domain.Ticket, messages []domain.Message) error {
	if f.failCreate != nil {
		return f.failCreate
	}
	ticket.ID = f.nextID
	f.nextID++
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	stored := *ticket
	f.tickets[stored.ID] = &stored
	f.lastCreated = messages
	return nil
}

func (f *fakeTicketRepo) Update(ctx context.Context, ticket *domain.Ticket) error {
	if _, ok := f.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *ticket
	stored.UpdatedAt = time.Now()
	f.tickets[stored.ID] = &stored
	return nil
}

func (f *fakeTicketRepo) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	ticket, ok := f.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (f *fakeTicketRepo) GetByCollaboratorAndID(ctx context.Context, collaboratorID string, id int64) (*domain.Ticket, error) {
	ticket, ok := f.tickets[id]
	if !ok || ticket.CollaboratorID != collaboratorID {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (f *fakeTicketRepo) ListOpenByCollaborator(ctx context.Context, collaboratorID string) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, ticket := range f.tickets {
		if ticket.CollaboratorID == collaboratorID && ticket.Status != domain.TicketStatusFinalized {
			out = append(out, *ticket)
		}
	}
	return out, nil
}

func (f *fakeTicketRepo) SearchBySubject(ctx context.Context, collaboratorID, subject string) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, ticket := range f.tickets {
		if ticket.CollaboratorID == collaboratorID {
			out = append(out, *ticket)
		}
	}
	return out, nil
}

func (f *fakeTicketRepo) ListByAnalyst(ctx context.Context, analystID string, filter repository.AnalystPageFilter) ([]domain.Ticket, int, error) {
	f.lastFilter = filter
	return f.page, f.total, nil
}

type fakeConversationRepo struct {
	conversations map[int64]*domain.Conversation
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{conversations: map[int64]*domain.Conversation{}}
}

func (f *fakeConversationRepo) Create(ctx context.Context, ticketID int64, messages []domain.Message) (*domain.Conversation, error) {
	if _, ok := f.conversations[ticketID]; ok {
		return nil, repository.ErrConversationExists
	}
	conversation := &domain.Conversation{ID: ticketID, TicketID: ticketID, Messages: messages, CreatedAt: time.Now()}
	f.conversations[ticketID] = conversation
	return conversation, nil
}

func (f *fakeConversationRepo) GetByTicket(ctx context.Context, ticketID int64) (*domain.Conversation, error) {
	conversation, ok := f.conversations[ticketID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return conversation, nil
}

type fakeClientRepo struct {
	clientsByName   map[string]*domain.Client
	clientsByDomain map[string]*domain.Client
	services        map[string][]domain.ContractedService
}

func newFakeClientRepo() *fakeClientRepo {
	return &fakeClientRepo{
		clientsByName:   map[string]*domain.Client{},
		clientsByDomain: map[string]*domain.Client{},
		services:        map[string][]domain.ContractedService{},
	}
}

func (f *fakeClientRepo) GetByName(ctx context.Context, name string) (*domain.Client, error) {
	client, ok := f.clientsByName[name]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return client, nil
}

func (f *fakeClientRepo) GetByDomain(ctx context.Context, emailDomain string) (*domain.Client, error) {
	client, ok := f.clientsByDomain[emailDomain]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return client, nil
}

func (f *fakeClientRepo) ContractedServices(ctx context.Context, clientID string) ([]domain.ContractedService, error) {
	return f.services[clientID], nil
}

type fakePersonRepo struct {
	people map[string]*domain.Person
	nextID int
}

func newFakePersonRepo() *fakePersonRepo {
	return &fakePersonRepo{people: map[string]*domain.Person{}, nextID: 1}
}

func (f *fakePersonRepo) Upsert(ctx context.Context, person *domain.Person) error {
	key := person.Provider + "/" + person.ProviderID
	if existing, ok := f.people[key]; ok {
		person.ID = existing.ID
		person.CreatedAt = existing.CreatedAt
	} else {
		person.ID = "person-" + person.ProviderID
		person.CreatedAt = time.Now()
	}
	person.UpdatedAt = time.Now()
	stored := *person
	f.people[key] = &stored
	return nil
}

func (f *fakePersonRepo) GetByID(ctx context.Context, id string) (*domain.Person, error) {
	for _, person := range f.people {
		if person.ID == id {
			return person, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeCollaboratorRepo struct {
	collaborators map[string]*domain.Collaborator
	nextID        int
}

func newFakeCollaboratorRepo() *fakeCollaboratorRepo {
	return &fakeCollaboratorRepo{collaborators: map[string]*domain.Collaborator{}, nextID: 1}
}

func (f *fakeCollaboratorRepo) Create(ctx context.Context, collaborator *domain.Collaborator) error {
	collaborator.ID = "collab-" + collaborator.PersonID
	collaborator.CreatedAt = time.Now()
	stored := *collaborator
	f.collaborators[stored.ID] = &stored
	return nil
}

func (f *fakeCollaboratorRepo) GetByID(ctx context.Context, id string) (*domain.Collaborator, error) {
	collaborator, ok := f.collaborators[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return collaborator, nil
}

func (f *fakeCollaboratorRepo) GetByPersonAndClient(ctx context.Context, personID, clientID string) (*domain.Collaborator, error) {
	for _, collaborator := range f.collaborators {
		if collaborator.PersonID == personID && collaborator.ClientID == clientID {
			return collaborator, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeCollaboratorRepo) GetByPersonID(ctx context.Context, personID string) (*domain.Collaborator, error) {
	for _, collaborator := range f.collaborators {
		if collaborator.PersonID == personID {
			return collaborator, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeAnalystRepo struct {
	analysts map[string]*domain.Analyst
}

func newFakeAnalystRepo() *fakeAnalystRepo {
	return &fakeAnalystRepo{analysts: map[string]*domain.Analyst{}}
}

func (f *fakeAnalystRepo) put(analyst domain.Analyst) *domain.Analyst {
	stored := analyst
	f.analysts[stored.ID] = &stored
	return &stored
}

func (f *fakeAnalystRepo) Create(ctx context.Context, analyst *domain.Analyst) error {
	analyst.ID = "analyst-" + analyst.PersonID
	analyst.CreatedAt = time.Now()
	stored := *analyst
	f.analysts[stored.ID] = &stored
	return nil
}

func (f *fakeAnalystRepo) GetByID(ctx context.Context, id string) (*domain.Analyst, error) {
	analyst, ok := f.analysts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return analyst, nil
}

func (f *fakeAnalystRepo) GetByPersonID(ctx context.Context, personID string) (*domain.Analyst, error) {
	for _, analyst := range f.analysts {
		if analyst.PersonID == personID {
			return analyst, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeAnalystRepo) ListAboveLevel(ctx context.Context, level int) ([]domain.Analyst, error) {
	var out []domain.Analyst
	for _, analyst := range f.analysts {
		if analyst.Level > level {
			out = append(out, *analyst)
		}
	}
	return out, nil
}

// fakeEscalationRepo mimics the atomic reassign-plus-log commit: either both
// the ticket pointer and the log entry change, or neither does.
type fakeEscalationRepo struct {
	tickets  *fakeTicketRepo
	records  []domain.Escalation
	failNext error
}

func (f *fakeEscalationRepo) Escalate(ctx context.Context, ticketID int64, fromAnalystID, toAnalystID, justification string) (*domain.Escalation, error) {
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return nil, err
	}
	ticket, ok := f.tickets.tickets[ticketID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	ticket.AnalystID = &toAnalystID
	record := domain.Escalation{
		ID:            int64(len(f.records) + 1),
		TicketID:      ticketID,
		FromAnalystID: fromAnalystID,
		ToAnalystID:   toAnalystID,
		Justification: justification,
		CreatedAt:     time.Now(),
	}
	f.records = append(f.records, record)
	return &record, nil
}

func (f *fakeEscalationRepo) LatestReason(ctx context.Context, ticketID int64) (*string, error) {
	for i := len(f.records) - 1; i >= 0; i-- {
		if f.records[i].TicketID == ticketID {
			reason := f.records[i].Justification
			return &reason, nil
		}
	}
	return nil, nil
}

type fakeReferenceRepo struct {
	collaborators    map[string]repository.CollaboratorRef
	services         map[string]string
	collaboratorHits int
	serviceHits      int
	lastCollabIDs    []string
	lastServiceIDs   []string
}

func (f *fakeReferenceRepo) CollaboratorRefs(ctx context.Context, ids []string) (map[string]repository.CollaboratorRef, error) {
	f.collaboratorHits++
	f.lastCollabIDs = ids
	out := map[string]repository.CollaboratorRef{}
	for _, id := range ids {
		if ref, ok := f.collaborators[id]; ok {
			out[id] = ref
		}
	}
	return out, nil
}

func (f *fakeReferenceRepo) ServiceNames(ctx context.Context, clientServiceIDs []string) (map[string]string, error) {
	f.serviceHits++
	f.lastServiceIDs = clientServiceIDs
	out := map[string]string{}
	for _, id := range clientServiceIDs {
		if name, ok := f.services[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}

type fakeCache struct {
	values  map[string]string
	deletes []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: map[string]string{}}
}

func (f *fakeCache) GetString(ctx context.Context, key string) (string, bool, error) {
	val, ok := f.values[key]
	return val, ok, nil
}

func (f *fakeCache) SetString(ctx context.Context, key, val string, ttl time.Duration) error {
	f.values[key] = val
	return nil
}

func (f *fakeCache) Delete(ctx context.Context, key string) error {
	delete(f.values, key)
	f.deletes = append(f.deletes, key)
	return nil
}

var errBoom = errors.New("boom")
