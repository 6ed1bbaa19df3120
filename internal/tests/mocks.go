package tests

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"taxipro/internal/domain"
	"taxipro/internal/repository"
	"taxipro/internal/service"
)

// ──────────────────────────────────────────────
// MOCK TRIP REPOSITORY
// ──────────────────────────────────────────────

// MockTripRepository is a mock implementation of TripRepository.
type MockTripRepository struct {
	mu    sync.RWMutex
	trips map[string]*domain.Trip

	// Counters for verification
	CreateCallCount int32
	UpdateCallCount int32

	// Error injection
	CreateError error
	UpdateError error
	GetError    error
}

// NewMockTripRepository creates a new mock trip repository.
func NewMockTripRepository() *MockTripRepository {
	return &MockTripRepository{
		trips: make(map[string]*domain.Trip),
	}
}

// AddTrip adds a trip to the mock repository.
func (m *MockTripRepository) AddTrip(trip *domain.Trip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[trip.ID] = trip
}

func (m *MockTripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[trip.ID] = trip
	return nil
}

func (m *MockTripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	trip, ok := m.trips[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *trip
	return &copy, nil
}

func (m *MockTripRepository) GetForUpdate(ctx context.Context, id string) (*domain.Trip, error) {
	return m.GetByID(ctx, id)
}

func (m *MockTripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.trips[trip.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *trip
	m.trips[trip.ID] = &copy
	return nil
}

func (m *MockTripRepository) GetOpenByPassengerID(ctx context.Context, passengerID string) (*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.trips {
		if t.PassengerID != passengerID {
			continue
		}
		switch t.Status {
		case domain.TripStatusPending, domain.TripStatusAssigned, domain.TripStatusArrived, domain.TripStatusActive:
			copy := *t
			return &copy, nil
		}
	}
	return nil, nil
}

func (m *MockTripRepository) GetByTransactionID(ctx context.Context, transactionID string) (*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.trips {
		if t.Payment.TransactionID == transactionID {
			copy := *t
			return &copy, nil
		}
	}
	return nil, nil
}

func (m *MockTripRepository) DemoteStale(ctx context.Context, from, to domain.TripStatus, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, t := range m.trips {
		if t.Status == from && t.UpdatedAt.Before(cutoff) {
			t.Status = to
			t.UpdatedAt = time.Now()
			t.LastActor = domain.ActorSystem
			n++
		}
	}
	return n, nil
}

// GetTrip returns the stored trip for test assertions.
func (m *MockTripRepository) GetTrip(id string) *domain.Trip {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.trips[id]
}

// ──────────────────────────────────────────────
// MOCK SHARED LINK REPOSITORY
// ──────────────────────────────────────────────

// MockSharedLinkRepository is a mock implementation of SharedLinkRepository.
type MockSharedLinkRepository struct {
	mu    sync.RWMutex
	links map[string]*domain.SharedTripLink

	CreateCallCount int32
	CreateError     error
}

// NewMockSharedLinkRepository creates a new mock shared link repository.
func NewMockSharedLinkRepository() *MockSharedLinkRepository {
	return &MockSharedLinkRepository{
		links: make(map[string]*domain.SharedTripLink),
	}
}

// AddLink adds a link to the mock repository.
func (m *MockSharedLinkRepository) AddLink(link *domain.SharedTripLink) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links[link.Token] = link
}

func (m *MockSharedLinkRepository) Create(ctx context.Context, link *domain.SharedTripLink) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links[link.Token] = link
	return nil
}

func (m *MockSharedLinkRepository) GetByToken(ctx context.Context, token string) (*domain.SharedTripLink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	link, ok := m.links[token]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *link
	return &copy, nil
}

func (m *MockSharedLinkRepository) GetActiveByTripID(ctx context.Context, tripID string) ([]*domain.SharedTripLink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.SharedTripLink
	for _, l := range m.links {
		if l.TripID == tripID && l.Active {
			copy := *l
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockSharedLinkRepository) DeactivateByTripID(ctx context.Context, tripID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.links {
		if l.TripID == tripID {
			l.Active = false
		}
	}
	return nil
}

func (m *MockSharedLinkRepository) Deactivate(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	link, ok := m.links[token]
	if !ok {
		return repository.ErrNotFound
	}
	link.Active = false
	return nil
}

func (m *MockSharedLinkRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for token, l := range m.links {
		if l.ExpiresAt.Before(cutoff) {
			delete(m.links, token)
			n++
		}
	}
	return n, nil
}

// GetLink returns the stored link for test assertions.
func (m *MockSharedLinkRepository) GetLink(token string) *domain.SharedTripLink {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.links[token]
}

// ──────────────────────────────────────────────
// MOCK TARIFF REPOSITORY
// ──────────────────────────────────────────────

// MockTariffRepository is a mock implementation of TariffRepository.
type MockTariffRepository struct {
	mu     sync.RWMutex
	tariff *domain.Tariff

	GetActiveError error
}

// NewMockTariffRepository creates a mock tariff repository seeded with a
// plausible schedule.
func NewMockTariffRepository() *MockTariffRepository {
	return &MockTariffRepository{
		tariff: &domain.Tariff{
			ID:                         "tariff-1",
			Version:                    1,
			Active:                     true,
			Currency:                   "eur",
			BaseFareDay:                5000,
			BaseFareNight:              6000,
			PhoneBaseFareDay:           5500,
			PhoneBaseFareNight:         6500,
			PerKm:                      1500,
			PerMinute:                  200,
			AdvanceMeters:              100,
			AdvanceSeconds:             30,
			AdvancePrice:               150,
			StopCharge:                 1000,
			DestinationChangeSurcharge: 2000,
			PenaltyFare:                4000,
		},
	}
}

// SetTariff replaces the active tariff.
func (m *MockTariffRepository) SetTariff(t *domain.Tariff) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tariff = t
}

func (m *MockTariffRepository) GetActive(ctx context.Context) (*domain.Tariff, error) {
	if m.GetActiveError != nil {
		return nil, m.GetActiveError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.tariff == nil {
		return nil, repository.ErrNotFound
	}
	copy := *m.tariff
	return &copy, nil
}

// ──────────────────────────────────────────────
// MOCK PASSENGER REPOSITORY
// ──────────────────────────────────────────────

// MockPassengerRepository is a mock implementation of PassengerRepository.
type MockPassengerRepository struct {
	mu         sync.RWMutex
	passengers map[string]*domain.Passenger

	IncrementCallCount int32
	IncrementError     error
}

// NewMockPassengerRepository creates a new mock passenger repository.
func NewMockPassengerRepository() *MockPassengerRepository {
	return &MockPassengerRepository{
		passengers: make(map[string]*domain.Passenger),
	}
}

// AddPassenger adds a passenger to the mock repository.
func (m *MockPassengerRepository) AddPassenger(p *domain.Passenger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.passengers[p.ID] = p
}

func (m *MockPassengerRepository) Create(ctx context.Context, p *domain.Passenger) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.passengers[p.ID] = p
	return nil
}

func (m *MockPassengerRepository) GetByID(ctx context.Context, id string) (*domain.Passenger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.passengers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *p
	return &copy, nil
}

func (m *MockPassengerRepository) IncrementPendingBalance(ctx context.Context, id string, amount int64) error {
	atomic.AddInt32(&m.IncrementCallCount, 1)
	if m.IncrementError != nil {
		return m.IncrementError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.passengers[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.PendingBalance += amount
	return nil
}

// GetPassenger returns the stored passenger for test assertions.
func (m *MockPassengerRepository) GetPassenger(id string) *domain.Passenger {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.passengers[id]
}

// ──────────────────────────────────────────────
// MOCK DRIVER REPOSITORY
// ──────────────────────────────────────────────

// MockDriverRepository is a mock implementation of DriverRepository.
type MockDriverRepository struct {
	mu      sync.RWMutex
	drivers map[string]*domain.Driver

	MarkBilledCallCount int32
	MarkBilledError     error
}

// NewMockDriverRepository creates a new mock driver repository.
func NewMockDriverRepository() *MockDriverRepository {
	return &MockDriverRepository{
		drivers: make(map[string]*domain.Driver),
	}
}

// AddDriver adds a driver to the mock repository.
func (m *MockDriverRepository) AddDriver(d *domain.Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[d.ID] = d
}

func (m *MockDriverRepository) Create(ctx context.Context, d *domain.Driver) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[d.ID] = d
	return nil
}

func (m *MockDriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.drivers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *d
	return &copy, nil
}

func (m *MockDriverRepository) ListDueForBilling(ctx context.Context, cutoff time.Time) ([]*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var due []*domain.Driver
	for _, d := range m.drivers {
		billable := d.Subscription == domain.SubscriptionActive || d.Subscription == domain.SubscriptionExpired
		if billable && (d.LastBilledAt.IsZero() || d.LastBilledAt.Before(cutoff)) {
			copy := *d
			due = append(due, &copy)
		}
	}
	return due, nil
}

func (m *MockDriverRepository) MarkBilled(ctx context.Context, id string, at time.Time) error {
	atomic.AddInt32(&m.MarkBilledCallCount, 1)
	if m.MarkBilledError != nil {
		return m.MarkBilledError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	d.LastBilledAt = at
	return nil
}

func (m *MockDriverRepository) UpdateSubscription(ctx context.Context, id string, status domain.SubscriptionStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	d.Subscription = status
	return nil
}

// GetDriver returns the stored driver for test assertions.
func (m *MockDriverRepository) GetDriver(id string) *domain.Driver {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.drivers[id]
}

// ──────────────────────────────────────────────
// MOCK MESSAGE REPOSITORY
// ──────────────────────────────────────────────

// MockMessageRepository is a mock implementation of MessageRepository.
type MockMessageRepository struct {
	mu       sync.RWMutex
	messages []*domain.Message
}

// NewMockMessageRepository creates a new mock message repository.
func NewMockMessageRepository() *MockMessageRepository {
	return &MockMessageRepository{}
}

func (m *MockMessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return nil
}

func (m *MockMessageRepository) HasDriverMessageSince(ctx context.Context, tripID, driverID string, since time.Time) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, msg := range m.messages {
		if msg.TripID == tripID && msg.SenderID == driverID &&
			msg.Role == domain.ActorDriver && !msg.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

// MessageCount returns the number of stored messages.
func (m *MockMessageRepository) MessageCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.messages)
}

// ──────────────────────────────────────────────
// MOCK AUDIT REPOSITORY
// ──────────────────────────────────────────────

// MockAuditRepository is a mock implementation of AuditRepository.
type MockAuditRepository struct {
	mu      sync.RWMutex
	entries []*domain.AuditEntry

	AppendError error
}

// NewMockAuditRepository creates a new mock audit repository.
func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

func (m *MockAuditRepository) Append(ctx context.Context, entry *domain.AuditEntry) error {
	if m.AppendError != nil {
		return m.AppendError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *MockAuditRepository) ListByTripID(ctx context.Context, tripID string) ([]*domain.AuditEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.AuditEntry
	for _, e := range m.entries {
		if e.TripID == tripID {
			result = append(result, e)
		}
	}
	return result, nil
}

// Entries returns all stored entries for test assertions.
func (m *MockAuditRepository) Entries() []*domain.AuditEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.AuditEntry(nil), m.entries...)
}

// ──────────────────────────────────────────────
// MOCK UNIT OF WORK
// ──────────────────────────────────────────────

// MockUnitOfWork runs the unit-of-work function directly against the
// in-memory repositories. There is no rollback: tests asserting failure
// paths check that no further writes happened after the error.
type MockUnitOfWork struct {
	Trips      *MockTripRepository
	Links      *MockSharedLinkRepository
	Passengers *MockPassengerRepository
	Drivers    *MockDriverRepository

	ExecuteCallCount int32
	ExecuteError     error
}

// NewMockUnitOfWork creates a unit of work over fresh mock repositories.
func NewMockUnitOfWork() *MockUnitOfWork {
	return &MockUnitOfWork{
		Trips:      NewMockTripRepository(),
		Links:      NewMockSharedLinkRepository(),
		Passengers: NewMockPassengerRepository(),
		Drivers:    NewMockDriverRepository(),
	}
}

func (m *MockUnitOfWork) Execute(ctx context.Context, fn func(tx repository.RepoSet) error) error {
	atomic.AddInt32(&m.ExecuteCallCount, 1)
	if m.ExecuteError != nil {
		return m.ExecuteError
	}
	return fn(repository.RepoSet{
		Trips:      m.Trips,
		Links:      m.Links,
		Passengers: m.Passengers,
		Drivers:    m.Drivers,
	})
}

// ──────────────────────────────────────────────
// MOCK LOCATION STORE
// ──────────────────────────────────────────────

// MockLocationStore is an in-memory stand-in for the Redis geo index.
type MockLocationStore struct {
	mu        sync.RWMutex
	locations map[string]domain.LatLng

	UpdateError error
}

// NewMockLocationStore creates a new mock location store.
func NewMockLocationStore() *MockLocationStore {
	return &MockLocationStore{
		locations: make(map[string]domain.LatLng),
	}
}

func (m *MockLocationStore) UpdateLocation(ctx context.Context, driverID string, loc domain.LatLng) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locations[driverID] = loc
	return nil
}

func (m *MockLocationStore) GetLocation(ctx context.Context, driverID string) (*domain.LatLng, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	loc, ok := m.locations[driverID]
	if !ok {
		return nil, nil
	}
	copy := loc
	return &copy, nil
}

func (m *MockLocationStore) RemoveLocation(ctx context.Context, driverID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locations, driverID)
	return nil
}

// ──────────────────────────────────────────────
// MOCK THROTTLE STORE
// ──────────────────────────────────────────────

// MockThrottleStore is an in-memory stand-in for the Redis throttle.
type MockThrottleStore struct {
	mu   sync.Mutex
	seen map[string]time.Time

	AllowError error
}

// NewMockThrottleStore creates a new mock throttle store.
func NewMockThrottleStore() *MockThrottleStore {
	return &MockThrottleStore{
		seen: make(map[string]time.Time),
	}
}

func (m *MockThrottleStore) Allow(ctx context.Context, action, tripID string, window time.Duration) (bool, error) {
	if m.AllowError != nil {
		return false, m.AllowError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := action + ":" + tripID
	if at, ok := m.seen[key]; ok && time.Since(at) < window {
		return false, nil
	}
	m.seen[key] = time.Now()
	return true, nil
}

// ──────────────────────────────────────────────
// MOCK NOTIFIER
// ──────────────────────────────────────────────

// SentNotification records one delivered notification.
type SentNotification struct {
	RecipientID string
	Title       string
	Message     string
}

// MockNotifier records notifications for test assertions.
type MockNotifier struct {
	mu   sync.Mutex
	sent []SentNotification

	NotifyError error
}

// NewMockNotifier creates a new mock notifier.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) Notify(ctx context.Context, recipientID, title, message string) error {
	if m.NotifyError != nil {
		return m.NotifyError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, SentNotification{RecipientID: recipientID, Title: title, Message: message})
	return nil
}

// Sent returns the recorded notifications.
func (m *MockNotifier) Sent() []SentNotification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentNotification(nil), m.sent...)
}

// ──────────────────────────────────────────────
// MOCK PAYMENT GATEWAY
// ──────────────────────────────────────────────

// MockPaymentGateway is a PaymentGateway with failure injection.
type MockPaymentGateway struct {
	mu      sync.Mutex
	intents []service.CreateIntentRequest

	CreateIntentCallCount int32
	CreateIntentError     error
	// DeclineNext makes the next intent come back failed instead of
	// succeeded.
	DeclineNext bool
}

// NewMockPaymentGateway creates a new mock gateway.
func NewMockPaymentGateway() *MockPaymentGateway {
	return &MockPaymentGateway{}
}

func (m *MockPaymentGateway) CreateIntent(ctx context.Context, req service.CreateIntentRequest) (*service.PaymentIntent, error) {
	atomic.AddInt32(&m.CreateIntentCallCount, 1)
	if m.CreateIntentError != nil {
		return nil, m.CreateIntentError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.intents = append(m.intents, req)
	status := service.IntentStatusSucceeded
	if m.DeclineNext {
		m.DeclineNext = false
		status = service.IntentStatusFailed
	}
	return &service.PaymentIntent{ID: "pi_" + req.IdempotencyKey, Status: status}, nil
}

// Intents returns the recorded intent requests.
func (m *MockPaymentGateway) Intents() []service.CreateIntentRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]service.CreateIntentRequest(nil), m.intents...)
}
