package petstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	s := NewStore(2)
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("x", 3600))
	s.now = func() time.Time { return fixed }

	tag := "dog"
	a := s.Create(NewPet{Name: "a", Tag: &tag})
	b := s.Create(NewPet{Name: "b"})
	assert.Equal(t, int64(1), a.ID)
	assert.Equal(t, int64(2), b.ID)
	assert.Equal(t, fixed.UTC(), a.CreatedAt)

	got, err := s.Get(1)
	require.NoError(t, err)
	assert.Equal(t, a, got)
	_, err = s.Get(3)
	assert.ErrorIs(t, err, ErrNotFound)

	items, total := s.List(Filter{Tag: &tag})
	assert.Equal(t, 1, total)
	assert.Equal(t, []Pet{a}, items)
	items, total = s.List(Filter{Offset: 5})
	assert.Equal(t, 2, total)
	assert.Empty(t, items)

	require.NoError(t, s.Delete(1))
	assert.ErrorIs(t, s.Delete(1), ErrNotFound)

	events := s.Events()
	require.Len(t, events, 2, "history is bounded")
	assert.Equal(t, int64(2), events[0].Seq)
	assert.Equal(t, EventDeleted, events[1].Type)
	assert.Equal(t, a.ID, events[1].Pet.ID)
}

func TestStoreSubscribe(t *testing.T) {
	s := NewStore(0)
	ch, cancel := s.Subscribe(1)
	s.Create(NewPet{Name: "a"})
	s.Create(NewPet{Name: "b"})

	ev := <-ch
	assert.Equal(t, "a", ev.Pet.Name)
	select {
	case ev := <-ch:
		t.Fatalf("event %d should have been dropped", ev.Seq)
	default:
	}

	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)
	s.Create(NewPet{Name: "c"})
}
