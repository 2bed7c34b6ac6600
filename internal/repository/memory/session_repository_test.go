package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type entry struct {
	name string
}

func TestSaveGetDelete(t *testing.T) {
	repo := NewSessionRepository[*entry](time.Minute)

	repo.Save("a", &entry{name: "first"})
	got, ok := repo.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "first", got.name)
	assert.Equal(t, 1, repo.Count())

	repo.Delete("a")
	_, ok = repo.Get("a")
	assert.False(t, ok)
}

func TestSaveIfAbsentKeepsExisting(t *testing.T) {
	repo := NewSessionRepository[*entry](time.Minute)

	first, added := repo.SaveIfAbsent("a", &entry{name: "first"})
	assert.True(t, added)

	again, added := repo.SaveIfAbsent("a", &entry{name: "second"})
	assert.False(t, added)
	assert.Same(t, first, again)
}

func TestEntriesExpire(t *testing.T) {
	repo := NewSessionRepository[*entry](20 * time.Millisecond)
	evicted := make(chan string, 1)
	repo.OnEvicted(func(id string, _ *entry) { evicted <- id })

	repo.Save("a", &entry{})

	select {
	case id := <-evicted:
		assert.Equal(t, "a", id)
	case <-time.After(time.Second):
		t.Fatal("entry was not evicted")
	}
}
