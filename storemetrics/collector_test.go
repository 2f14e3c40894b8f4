package storemetrics_test

import (
	"strings"
	"sync"
	"testing"

	indexedstore "github.com/karupanerura/indexed-store"
	"github.com/karupanerura/indexed-store/storemetrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type Unit struct {
	ID    int
	Level int
	Kind  string
}

func TestCollector(t *testing.T) {
	t.Parallel()

	store := indexedstore.NewMapStore[int]([]*Unit{
		{ID: 1, Level: 2, Kind: "a"},
		{ID: 2, Level: 2, Kind: "b"},
		{ID: 3, Level: 3, Kind: "a"},
	}, "ID", []string{"Level", "Kind"})
	store.Remove(3)

	var mu sync.Mutex
	c := storemetrics.NewCollector("units", store, storemetrics.WithLocker(&mu))

	expected := `
# HELP indexedstore_records Number of records in the store
# TYPE indexedstore_records gauge
indexedstore_records{store="units"} 2
# HELP indexedstore_index_buckets Number of distinct values seen by the index
# TYPE indexedstore_index_buckets gauge
indexedstore_index_buckets{index="Kind",store="units"} 2
indexedstore_index_buckets{index="Level",store="units"} 2
# HELP indexedstore_index_empty_buckets Number of index buckets left empty by removals
# TYPE indexedstore_index_empty_buckets gauge
indexedstore_index_empty_buckets{index="Kind",store="units"} 0
indexedstore_index_empty_buckets{index="Level",store="units"} 1
# HELP indexedstore_index_entries Number of primary keys filed in the index
# TYPE indexedstore_index_entries gauge
indexedstore_index_entries{index="Kind",store="units"} 2
indexedstore_index_entries{index="Level",store="units"} 2
`
	if err := testutil.CollectAndCompare(c, strings.NewReader(expected)); err != nil {
		t.Error(err)
	}
}

func TestCollector_Register(t *testing.T) {
	t.Parallel()

	store := indexedstore.NewArrayStore[int]([]*Unit{{ID: 1, Level: 1}}, "ID", []string{"Level"})
	reg := prometheus.NewPedanticRegistry()
	if err := reg.Register(storemetrics.NewCollector("units", store)); err != nil {
		t.Fatal(err)
	}

	if got := testutil.CollectAndCount(storemetrics.NewCollector("units", store)); got != 4 {
		t.Errorf("unexpected metric count: %d", got)
	}
	if _, err := reg.Gather(); err != nil {
		t.Error(err)
	}
}
