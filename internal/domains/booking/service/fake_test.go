package service_test

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"

	"lodge/internal/domains/booking/availability"
	"lodge/internal/domains/booking/model"
	"lodge/internal/domains/booking/reference"
	"lodge/internal/domains/booking/repository"
	roomModel "lodge/internal/domains/room/model"
	"lodge/shared/cache"
	gDto "lodge/shared/dto"
	"lodge/shared/event"

	"github.com/jmoiron/sqlx"
)

// fakeStore keeps bookings in memory. A per-room mutex stands in for the row lock and
// CreateTx enforces the unique reference and the overlap exclusion like the database does.
type fakeStore struct {
	mu         sync.Mutex
	rooms      map[string]roomModel.Room
	bookings   []model.Booking
	roomLocks  map[string]*sync.Mutex
	collisions int
	inserts    int
}

var _ repository.Booking = (*fakeStore)(nil)

func newFakeStore(rooms ...roomModel.Room) *fakeStore {
	store := &fakeStore{
		rooms:     map[string]roomModel.Room{},
		roomLocks: map[string]*sync.Mutex{},
	}

	for _, room := range rooms {
		store.rooms[room.ID] = room
	}

	return store
}

func (f *fakeStore) lockFor(roomID string) *sync.Mutex {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.roomLocks[roomID]; !ok {
		f.roomLocks[roomID] = &sync.Mutex{}
	}

	return f.roomLocks[roomID]
}

func (f *fakeStore) WithRoomLock(_ context.Context, roomID string, fn repository.RoomLockFunc) error {
	f.mu.Lock()
	room, ok := f.rooms[roomID]
	f.mu.Unlock()

	if !ok {
		return repository.ErrRoomNotFound
	}

	lock := f.lockFor(roomID)
	lock.Lock()
	defer lock.Unlock()

	return fn(nil, room)
}

func (f *fakeStore) blocking(roomIDs []string, span availability.Span) []model.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()

	result := []model.Booking{}

	for _, booking := range f.bookings {
		if !slices.Contains(roomIDs, booking.RoomID) || booking.Status == model.StatusCancelled {
			continue
		}

		if booking.CheckIn.Before(span.CheckOut) && booking.CheckOut.After(span.CheckIn) {
			result = append(result, booking)
		}
	}

	return result
}

func (f *fakeStore) GetBlocking(_ context.Context, roomIDs []string, span availability.Span) ([]model.Booking, error) {
	return f.blocking(roomIDs, span), nil
}

func (f *fakeStore) GetBlockingTx(_ context.Context, _ *sqlx.Tx, roomID string, span availability.Span) ([]model.Booking, error) {
	return f.blocking([]string{roomID}, span), nil
}

func (f *fakeStore) CreateTx(_ context.Context, _ *sqlx.Tx, booking model.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.inserts++

	if f.collisions > 0 {
		f.collisions--

		return fmt.Errorf("%w: forced", repository.ErrDuplicateReference)
	}

	for _, existing := range f.bookings {
		if existing.BookingReference == booking.BookingReference {
			return fmt.Errorf("%w: %s", repository.ErrDuplicateReference, booking.BookingReference)
		}

		if existing.RoomID == booking.RoomID && existing.Status != model.StatusCancelled &&
			existing.Stay().Span.Overlaps(booking.Stay().Span) {
			return repository.ErrOverlappingBooking
		}
	}

	f.bookings = append(f.bookings, booking)

	return nil
}

func (f *fakeStore) Get(_ context.Context, filter gDto.FilterGroup, _ ...string) (model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, raw := range filter.Filters {
		cond, ok := raw.(gDto.Filter)
		if !ok {
			continue
		}

		for _, booking := range f.bookings {
			switch {
			case cond.Field == model.FieldID && booking.ID == cond.Value:
				return booking, nil
			case cond.Field == model.FieldBookingReference && booking.BookingReference == cond.Value:
				return booking, nil
			}
		}
	}

	return model.Booking{}, nil
}

func (f *fakeStore) GetAll(_ context.Context, _ gDto.QueryParams, _ gDto.FilterGroup, _ ...string) ([]model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return slices.Clone(f.bookings), nil
}

func (f *fakeStore) Count(_ context.Context, _ gDto.FilterGroup) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.bookings), nil
}

func (f *fakeStore) Update(_ context.Context, fields map[string]any, filter gDto.FilterGroup) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	cond, _ := filter.Filters[0].(gDto.Filter)

	for i := range f.bookings {
		if f.bookings[i].ID != cond.Value {
			continue
		}

		if status, ok := fields[model.FieldStatus].(string); ok {
			f.bookings[i].Status = status
		}
	}

	return nil
}

func (f *fakeStore) snapshot() []model.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()

	return slices.Clone(f.bookings)
}

func (f *fakeStore) insertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.inserts
}

// sequenceGenerator hands out distinct references in order.
type sequenceGenerator struct {
	mu   sync.Mutex
	next int
}

func (g *sequenceGenerator) Generate(year int) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.next++

	return reference.Format("KL", year, 1000+g.next)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []event.Event
}

func (p *recordingPublisher) Publish(_ context.Context, _, _ string, evt event.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, evt)

	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	types := []string{}
	for _, evt := range p.events {
		types = append(types, evt.Type)
	}

	return types
}

// memCache is an in-memory RedisCache. When gate is set, read-through fills announce
// themselves on parked and wait for gate, so a test can hold a fill back past a write.
type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	gate    chan struct{}
	parked  chan struct{}
	fills   sync.WaitGroup
}

var _ cache.RedisCache = (*memCache)(nil)

func newMemCache() *memCache {
	return &memCache{entries: map[string][]byte{}}
}

func (c *memCache) Save(_ context.Context, key string, value any, _ int) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = payload

	return nil
}

func (c *memCache) SaveIfAbsent(_ context.Context, key string, value any, _ int) (bool, error) {
	c.fills.Add(1)
	defer c.fills.Done()

	if c.gate != nil {
		c.parked <- struct{}{}
		<-c.gate
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		return false, nil
	}

	c.entries[key] = payload

	return true, nil
}

func (c *memCache) Get(_ context.Context, key string, value any) error {
	c.mu.Lock()
	payload, ok := c.entries[key]
	c.mu.Unlock()

	if !ok {
		return fmt.Errorf("failed to get cache value: %w", cache.Nil)
	}

	return json.Unmarshal(payload, value)
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)

	return nil
}

func (c *memCache) Clear(_ context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")

	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}

	return nil
}

func (c *memCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.entries[key]

	return ok
}
