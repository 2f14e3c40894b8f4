package indexedstore_test

import (
	"testing"

	"github.com/google/uuid"
	indexedstore "github.com/karupanerura/indexed-store"
	"github.com/karupanerura/indexed-store/storetest"
)

func TestMapStore(t *testing.T) {
	t.Parallel()

	storetest.TestAll(t, storetest.MapStore[int, storetest.Unit](), storetest.MapStore[uuid.UUID, storetest.Session]())
}

func TestMapStore_SnapshotCache(t *testing.T) {
	t.Parallel()

	store := indexedstore.NewMapStore[int]([]*storetest.Unit{{ID: 1}, {ID: 2}}, "ID", nil)

	first := store.GetAll()
	if second := store.GetAll(); &first[0] != &second[0] {
		t.Error("GetAll must be cached until the next mutation")
	}

	stored, _ := store.Get(1)
	store.AlterInPlace(&storetest.Unit{ID: 1, Note: "x"})
	if again := store.GetAll(); &first[0] != &again[0] {
		t.Error("AlterInPlace must not invalidate the cached snapshot")
	}
	if stored.Note != "x" {
		t.Errorf("unexpected note: %q", stored.Note)
	}

	store.Remove(2)
	if got := store.GetAll(); len(got) != 1 || got[0] != stored {
		t.Errorf("unexpected snapshot after Remove: %v", got)
	}
}

func TestMapStore_Empty(t *testing.T) {
	t.Parallel()

	store := indexedstore.NewMapStore[int]([]*storetest.Unit(nil), "ID", []string{"Level"})
	if got := store.GetAll(); len(got) != 0 {
		t.Errorf("unexpected records: %v", got)
	}
	if got := store.Stats(); got.Records != 0 || got.Indexes["Level"] != (indexedstore.IndexStats{}) {
		t.Errorf("unexpected stats: %+v", got)
	}
}

func BenchmarkMapStore(b *testing.B) {
	newStore := storetest.MapStore[int, storetest.Unit]()
	b.Run("Alter", func(b *testing.B) {
		storetest.BenchmarkAlter(b, newStore, 1024)
	})
	b.Run("GetAll", func(b *testing.B) {
		storetest.BenchmarkGetAll(b, newStore, 1024, 0)
	})
	b.Run("GetAllAfterAlter", func(b *testing.B) {
		storetest.BenchmarkGetAll(b, newStore, 1024, 1)
	})
}
