package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/whisperspace/server/internal/store"
)

// fakeStorage is an in-memory Storage for hub and fanout tests.
type fakeStorage struct {
	mu         sync.Mutex
	rooms      map[string]*store.Room
	messages   map[int64]*store.Message
	nextID     int64
	failCreate bool
	failUpdate bool
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		rooms:    make(map[string]*store.Room),
		messages: make(map[int64]*store.Message),
	}
}

func (f *fakeStorage) addRoom(code string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.rooms[code] = &store.Room{ID: f.nextID, Code: code, Name: code, IsActive: true, CreatedAt: time.Now()}
}

func (f *fakeStorage) CreateRoom(_ context.Context, room *store.Room) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	room.ID = f.nextID
	f.rooms[room.Code] = room
	return nil
}

func (f *fakeStorage) GetRoomByCode(_ context.Context, code string) (*store.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[code]
	if !ok {
		return nil, store.ErrNotFound
	}
	return room, nil
}

func (f *fakeStorage) AddMember(context.Context, string, int64) error { return nil }

func (f *fakeStorage) RemoveMember(context.Context, string, int64) (int, error) { return 0, nil }

func (f *fakeStorage) IsMember(context.Context, string, int64) (bool, error) { return true, nil }

func (f *fakeStorage) FindRoomsEmptySince(context.Context, time.Time) ([]*store.Room, error) {
	return nil, nil
}

func (f *fakeStorage) DeleteRoom(_ context.Context, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rooms, code)
	return nil
}

func (f *fakeStorage) CreateMessage(_ context.Context, msg *store.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate {
		return errFake
	}
	f.nextID++
	msg.ID = f.nextID
	cp := *msg
	f.messages[msg.ID] = &cp
	return nil
}

func (f *fakeStorage) GetMessageByID(_ context.Context, id int64) (*store.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg, ok := f.messages[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *msg
	return &cp, nil
}

func (f *fakeStorage) UpdateMessage(_ context.Context, msg *store.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdate {
		return errFake
	}
	if _, ok := f.messages[msg.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *msg
	f.messages[msg.ID] = &cp
	return nil
}

func (f *fakeStorage) DeleteMessage(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.messages[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.messages, id)
	return nil
}

func (f *fakeStorage) DeleteMessagesByRoom(_ context.Context, code string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, msg := range f.messages {
		if msg.Room == code {
			delete(f.messages, id)
			n++
		}
	}
	return n, nil
}

var errFake = fakeErr("storage failure")

type fakeErr string

func (e fakeErr) Error() string { return string(e) }

// mustEvent polls the channel until an event of the wanted kind arrives,
// discarding others (presence broadcasts are frequent background noise).
func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

// expectNoEvent asserts that no event of the given kind arrives within the window.
func expectNoEvent(t *testing.T, ch <-chan *Event, kind EventKind) {
	t.Helper()

	deadline := time.Now().Add(150 * time.Millisecond)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev != nil && ev.Kind == kind {
				t.Fatalf("unexpected event of kind %v: %+v", kind, ev)
			}
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
}

func startHub(t *testing.T, st Storage) *Hub {
	t.Helper()

	hub := NewHub(st, nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}
