package petstore

import (
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrNotFound is returned for unknown pet IDs.
var ErrNotFound = errors.New("pet not found")

// DefaultHistory is the number of events a store keeps for replay.
const DefaultHistory = 100

// NewPet holds the fields a client may set when creating a pet.
type NewPet struct {
	Name     string
	Tag      *string
	Photo    []byte
	Category string
}

// Filter selects a page of pets.
type Filter struct {
	Tag    *string
	Offset int
	Limit  int
}

// Store keeps pets in memory. It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	pets    map[int64]Pet
	nextID  int64
	seq     int64
	events  []Event
	history int
	subs    map[chan Event]struct{}
	now     func() time.Time
}

// NewStore returns an empty store remembering the last history events.
// A non-positive history uses DefaultHistory.
func NewStore(history int) *Store {
	if history <= 0 {
		history = DefaultHistory
	}
	return &Store{
		pets:    make(map[int64]Pet),
		history: history,
		subs:    make(map[chan Event]struct{}),
		now:     time.Now,
	}
}

// List returns the pets matching f ordered by ID, and the number of matches.
func (s *Store) List(f Filter) ([]Pet, int) {
	s.mu.RLock()
	matched := make([]Pet, 0, len(s.pets))
	for _, p := range s.pets {
		if f.Tag != nil && (p.Tag == nil || *p.Tag != *f.Tag) {
			continue
		}
		matched = append(matched, p)
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	total := len(matched)
	if f.Offset >= total {
		return []Pet{}, total
	}
	matched = matched[max(f.Offset, 0):]
	if f.Limit > 0 && f.Limit < len(matched) {
		matched = matched[:f.Limit]
	}
	return matched, total
}

// Get returns the pet with id.
func (s *Store) Get(id int64) (Pet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pets[id]
	if !ok {
		return Pet{}, ErrNotFound
	}
	return p, nil
}

// Create stores a new pet and returns it with its assigned ID.
func (s *Store) Create(n NewPet) Pet {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	p := Pet{
		ID:        s.nextID,
		Name:      n.Name,
		Tag:       n.Tag,
		Photo:     n.Photo,
		CreatedAt: s.now().UTC(),
		Category:  n.Category,
	}
	s.pets[p.ID] = p
	s.publish(EventCreated, p)
	return p
}

// Delete removes the pet with id.
func (s *Store) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pets[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.pets, id)
	s.publish(EventDeleted, p)
	return nil
}

// Events returns the remembered events, oldest first.
func (s *Store) Events() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event(nil), s.events...)
}

// Subscribe returns a channel receiving future events and a function ending
// the subscription. Events are dropped for subscribers that fall more than
// buffer events behind.
func (s *Store) Subscribe(buffer int) (<-chan Event, func()) {
	ch := make(chan Event, buffer)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, ch)
			s.mu.Unlock()
			close(ch)
		})
	}
}

// publish must be called with mu held.
func (s *Store) publish(typ string, p Pet) {
	s.seq++
	ev := Event{Seq: s.seq, Type: typ, Pet: p}
	s.events = append(s.events, ev)
	if len(s.events) > s.history {
		s.events = s.events[len(s.events)-s.history:]
	}
	for ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
