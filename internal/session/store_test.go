package session

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hairfluencer/internal/domain"
)

var bob = domain.Hairstyle{ID: "2", Name: "Bob Cut", Description: "Classic bob hairstyle"}

func TestStore_StartsEmpty(t *testing.T) {
	store := NewStore()
	assert.True(t, store.Snapshot().IsEmpty())
}

func TestStore_Setters(t *testing.T) {
	store := NewStore()
	store.SetSelection(bob)
	store.SetSourcePhoto("/tmp/me.jpg")
	store.SetResultPhoto("data:image/jpeg;base64,AAAA")

	got := store.Snapshot()
	require.NotNil(t, got.SelectedHairstyle)
	assert.Equal(t, bob, *got.SelectedHairstyle)
	assert.Equal(t, domain.PhotoRef("/tmp/me.jpg"), got.SourcePhoto)
	assert.Equal(t, domain.PhotoRef("data:image/jpeg;base64,AAAA"), got.ResultPhoto)
}

func TestStore_SelectionReplacedWholesale(t *testing.T) {
	store := NewStore()
	store.SetSelection(bob)
	pixie := domain.Hairstyle{ID: "3", Name: "Pixie Cut"}
	store.SetSelection(pixie)

	got := store.Snapshot()
	require.NotNil(t, got.SelectedHairstyle)
	assert.Equal(t, pixie, *got.SelectedHairstyle)
	assert.Empty(t, got.SelectedHairstyle.Description)
}

func TestStore_SnapshotIsDetached(t *testing.T) {
	store := NewStore()
	store.SetSelection(bob)

	snap := store.Snapshot()
	snap.SelectedHairstyle.Name = "mutated"
	snap.SourcePhoto = "elsewhere"

	again := store.Snapshot()
	assert.Equal(t, "Bob Cut", again.SelectedHairstyle.Name)
	assert.True(t, again.SourcePhoto.IsZero())
}

func TestStore_ResetAfterAnySequence(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for run := 0; run < 200; run++ {
		store := NewStore()
		steps := rng.Intn(12)
		for i := 0; i < steps; i++ {
			switch rng.Intn(4) {
			case 0:
				store.SetSelection(bob)
			case 1:
				store.SetSourcePhoto("photo.jpg")
			case 2:
				store.SetResultPhoto("data:image/png;base64,AA==")
			case 3:
				store.Reset()
			}
		}
		store.Reset()
		assert.Equal(t, domain.SessionState{}, store.Snapshot(), "run %d", run)
	}
}

func TestStore_ResetIsAtomicUnderConcurrentReaders(t *testing.T) {
	store := NewStore()
	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			snap := store.Snapshot()
			full := snap.SelectedHairstyle != nil && !snap.SourcePhoto.IsZero() && !snap.ResultPhoto.IsZero()
			if !full && !snap.IsEmpty() {
				t.Errorf("observed partial state: %+v", snap)
				return
			}
		}
	}()

	for i := 0; i < 500; i++ {
		store.mu.Lock()
		h := bob
		store.state = domain.SessionState{SelectedHairstyle: &h, SourcePhoto: "a", ResultPhoto: "b"}
		store.mu.Unlock()
		store.Reset()
	}
	close(stop)
	wg.Wait()
}
