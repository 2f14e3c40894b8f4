package storetest

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	indexedstore "github.com/karupanerura/indexed-store"
	"github.com/karupanerura/indexed-store/internal/recordschema"
	"golang.org/x/sync/errgroup"
)

var unitIndexKeys = []string{"Level", "Kind"}

// CheckInvariants verifies that the primary map, GetAll and every declared index agree.
func CheckInvariants[PK indexedstore.KeyConstraint, R indexedstore.RecordConstraint](t testing.TB, store indexedstore.Store[PK, R], primaryKey string, indexKeys []string) {
	t.Helper()

	schema := recordschema.Of[R]()
	pkField := schema.MustField(primaryKey)

	count := 0
	for pk, r := range store.All() {
		count++
		if got := pkField.Get(r); got != any(pk) {
			t.Errorf("record stored under %v has primary key %v", pk, got)
		}
		if got, ok := store.Get(pk); !ok || got != r {
			t.Errorf("Get(%v) does not return the stored record", pk)
		}
		for _, key := range indexKeys {
			value := schema.MustField(key).Get(r)
			if !store.IndexBucket(key, value).Has(pk) {
				t.Errorf("record %v is missing from the %s=%v bucket", pk, key, value)
			}
		}
	}
	if count != store.Len() {
		t.Errorf("Len()=%d, but iterated %d records", store.Len(), count)
	}

	all := store.GetAll()
	if len(all) != count {
		t.Errorf("GetAll() returned %d records, want %d", len(all), count)
	}
	seen := make(map[*R]struct{}, len(all))
	for _, r := range all {
		if _, ok := seen[r]; ok {
			t.Errorf("GetAll() returned %v twice", pkField.Get(r))
		}
		seen[r] = struct{}{}
		if got, ok := store.Get(pkField.Get(r).(PK)); !ok || got != r {
			t.Errorf("GetAll() returned %v which is not stored", pkField.Get(r))
		}
	}

	stats := store.Stats()
	if stats.Records != count {
		t.Errorf("Stats().Records=%d, want %d", stats.Records, count)
	}
	for _, key := range indexKeys {
		if got := stats.Indexes[key].Entries; got != count {
			t.Errorf("index %s files %d entries for %d records", key, got, count)
		}
	}
}

func benchUnits(n, shift int) []*Unit {
	units := make([]*Unit, n)
	for i := range units {
		units[i] = &Unit{ID: i, Level: Level((i + shift) % 8), Kind: fmt.Sprint(i % 3)}
	}
	return units
}

// BenchmarkAlter benchmarks replacing records of a store holding n records with different index values.
func BenchmarkAlter(b *testing.B, newStore Constructor[int, Unit], n int) {
	store := newStore(benchUnits(n, 0), "ID", unitIndexKeys)
	replacements := [][]*Unit{benchUnits(n, 1), benchUnits(n, 0)}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		store.Alter(replacements[(i/n)%2][i%n])
	}
}

// BenchmarkGetAll benchmarks reading every record of a store holding n records.
// Every mutateEvery-th iteration alters one record first; zero means the store is never mutated.
func BenchmarkGetAll(b *testing.B, newStore Constructor[int, Unit], n, mutateEvery int) {
	store := newStore(benchUnits(n, 0), "ID", unitIndexKeys)
	replacements := benchUnits(n, 0)
	total := 0
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if mutateEvery != 0 && i%mutateEvery == 0 {
			store.Alter(replacements[i%n])
		}
		total += len(store.GetAll())
	}
	if total == 0 && b.N != 0 && n != 0 {
		b.Fatal("GetAll returned nothing")
	}
}

func byID(units []*Unit) []*Unit {
	sorted := slices.Clone(units)
	slices.SortFunc(sorted, func(a, b *Unit) int {
		return a.ID - b.ID
	})
	return sorted
}

func ids(units []*Unit) []int {
	out := make([]int, len(units))
	for i, u := range units {
		out[i] = u.ID
	}
	return out
}

func newUnits() []*Unit {
	return []*Unit{
		{ID: 1, Level: 2, Kind: "knight"},
		{ID: 2, Level: 2, Kind: "archer"},
		{ID: 3, Level: 3, Kind: "knight"},
	}
}

// TestScenario tests lookups through an index across remove and alter.
func TestScenario(t *testing.T, newStore Constructor[int, Unit]) {
	t.Run("Scenario", func(t *testing.T) {
		t.Parallel()

		units := newUnits()
		store := newStore(units, "ID", []string{"Level"})

		if diff := cmp.Diff([]*Unit{units[0], units[1]}, byID(store.FindAllByIndex("Level", 2))); diff != "" {
			t.Errorf("unexpected result (-want +got):\n%s", diff)
		}

		store.Remove(1)
		if diff := cmp.Diff([]*Unit{units[1]}, byID(store.FindAllByIndex("Level", 2))); diff != "" {
			t.Errorf("unexpected result (-want +got):\n%s", diff)
		}

		altered := &Unit{ID: 2, Level: 3}
		if old, ok := store.Alter(altered); !ok || old != units[1] {
			t.Errorf("Alter must return the replaced record, got %v", old)
		}
		if got := store.FindAllByIndex("Level", 2); len(got) != 0 {
			t.Errorf("expected no record at level 2, got %v", ids(got))
		}
		if !store.IsIndexEmpty("Level", 2) {
			t.Error("level 2 must be empty")
		}
		if diff := cmp.Diff([]*Unit{altered, units[2]}, byID(store.FindAllByIndex("Level", 3))); diff != "" {
			t.Errorf("unexpected result (-want +got):\n%s", diff)
		}
		CheckInvariants(t, store, "ID", []string{"Level"})
	})
}

// TestLookup tests the read operations.
func TestLookup(t *testing.T, newStore Constructor[int, Unit]) {
	t.Run("Lookup", func(t *testing.T) {
		t.Parallel()

		units := newUnits()
		store := newStore(units, "ID", unitIndexKeys)

		if got, ok := store.Get(3); !ok || got != units[2] {
			t.Errorf("unexpected Get(3): %v", got)
		}
		if got, ok := store.Get(4); ok || got != nil {
			t.Errorf("unexpected Get(4): %v", got)
		}
		if store.Len() != 3 {
			t.Errorf("unexpected Len: %d", store.Len())
		}
		if diff := cmp.Diff(units, byID(store.GetAll())); diff != "" {
			t.Errorf("unexpected result (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]*Unit{units[0], units[2]}, byID(store.GetAllWhere(func(u *Unit) bool {
			return u.Kind == "knight"
		}))); diff != "" {
			t.Errorf("unexpected result (-want +got):\n%s", diff)
		}
		if got := store.GetAllWhere(func(*Unit) bool { return false }); len(got) != 0 {
			t.Errorf("expected no record, got %v", ids(got))
		}

		for _, tt := range []struct {
			name  string
			key   string
			value any
			want  []int
		}{
			{name: "untyped int", key: "Level", value: 2, want: []int{1, 2}},
			{name: "exact type", key: "Level", value: Level(3), want: []int{3}},
			{name: "whole float", key: "Level", value: 3.0, want: []int{3}},
			{name: "string", key: "Kind", value: "knight", want: []int{1, 3}},
			{name: "unseen value", key: "Kind", value: "mage", want: nil},
			{name: "mistyped value", key: "Level", value: "2", want: nil},
			{name: "undeclared key", key: "Note", value: "", want: nil},
			{name: "unknown key", key: "Missing", value: 1, want: nil},
		} {
			t.Run(tt.name, func(t *testing.T) {
				got := store.FindAllByIndex(tt.key, tt.value)
				if diff := cmp.Diff(tt.want, ids(byID(got)), cmp.Comparer(func(a, b []int) bool {
					return len(a) == 0 && len(b) == 0 || slices.Equal(a, b)
				})); diff != "" {
					t.Errorf("unexpected result (-want +got):\n%s", diff)
				}

				one, ok := store.FindOneByIndex(tt.key, tt.value)
				if ok != (len(tt.want) != 0) {
					t.Fatalf("unexpected FindOneByIndex ok: %v", ok)
				}
				if ok && one.ID != tt.want[0] {
					t.Errorf("FindOneByIndex must return the earliest filed record, got %d", one.ID)
				}

				if got := store.IsIndexEmpty(tt.key, tt.value); got != (len(tt.want) == 0) {
					t.Errorf("unexpected IsIndexEmpty: %v", got)
				}
				if b := store.IndexBucket(tt.key, tt.value); b.Len() != len(tt.want) {
					t.Errorf("unexpected bucket size: %d", b.Len())
				}
			})
		}

		count := 0
		for pk, u := range store.All() {
			if pk != u.ID {
				t.Errorf("record %d stored under %d", u.ID, pk)
			}
			count++
		}
		if count != 3 {
			t.Errorf("unexpected iteration count: %d", count)
		}
	})
}

// TestIntersection tests the multi-attribute queries including the minimum-arity rule.
func TestIntersection(t *testing.T, newStore Constructor[int, Unit]) {
	t.Run("Intersection", func(t *testing.T) {
		t.Parallel()

		store := newStore([]*Unit{
			{ID: 1, Level: 2, Kind: "knight", Note: "a"},
			{ID: 2, Level: 2, Kind: "archer", Note: "a"},
			{ID: 3, Level: 3, Kind: "knight", Note: "b"},
			{ID: 4, Level: 2, Kind: "knight", Note: "b"},
		}, "ID", []string{"Level", "Kind", "Note"})

		for _, tt := range []struct {
			name  string
			pairs []indexedstore.IndexPair
			want  []int
		}{
			{
				name:  "no pairs",
				pairs: nil,
				want:  nil,
			},
			{
				name:  "single pair",
				pairs: []indexedstore.IndexPair{indexedstore.Pair("Level", 2)},
				want:  nil,
			},
			{
				name:  "single resolvable pair",
				pairs: []indexedstore.IndexPair{indexedstore.Pair("Level", 2), indexedstore.Pair("Kind", "mage")},
				want:  nil,
			},
			{
				name:  "undeclared key is dropped",
				pairs: []indexedstore.IndexPair{indexedstore.Pair("Level", 2), indexedstore.Pair("Score", 0.0)},
				want:  nil,
			},
			{
				name:  "two pairs",
				pairs: []indexedstore.IndexPair{indexedstore.Pair("Level", 2), indexedstore.Pair("Kind", "knight")},
				want:  []int{1, 4},
			},
			{
				name:  "two pairs without common members",
				pairs: []indexedstore.IndexPair{indexedstore.Pair("Level", 3), indexedstore.Pair("Kind", "archer")},
				want:  nil,
			},
			{
				name: "three pairs",
				pairs: []indexedstore.IndexPair{
					indexedstore.Pair("Level", 2),
					indexedstore.Pair("Kind", "knight"),
					indexedstore.Pair("Note", "b"),
				},
				want: []int{4},
			},
			{
				name: "same pair twice",
				pairs: []indexedstore.IndexPair{
					indexedstore.Pair("Kind", "knight"),
					indexedstore.Pair("Kind", "knight"),
				},
				want: []int{1, 3, 4},
			},
		} {
			t.Run(tt.name, func(t *testing.T) {
				got := ids(byID(store.FindAllByIndexIntersection(tt.pairs...)))
				if len(tt.want) == 0 {
					if len(got) != 0 {
						t.Errorf("expected no record, got %v", got)
					}
				} else if diff := cmp.Diff(tt.want, got); diff != "" {
					t.Errorf("unexpected result (-want +got):\n%s", diff)
				}

				one, ok := store.FindOneByIndexIntersection(tt.pairs...)
				if ok != (len(tt.want) != 0) {
					t.Fatalf("unexpected FindOneByIndexIntersection ok: %v", ok)
				}
				if ok && !slices.Contains(tt.want, one.ID) {
					t.Errorf("unexpected FindOneByIndexIntersection: %d", one.ID)
				}
				if got := store.IsIntersectionEmpty(tt.pairs...); got != (len(tt.want) == 0) {
					t.Errorf("unexpected IsIntersectionEmpty: %v", got)
				}
				if got := store.IndexIntersection(tt.pairs...).Len(); got != len(tt.want) {
					t.Errorf("unexpected IndexIntersection size: %d", got)
				}
			})
		}

		// the intersection is a fresh set
		b := store.IndexIntersection(indexedstore.Pair("Level", 2), indexedstore.Pair("Kind", "knight"))
		b.Delete(1)
		if !store.IndexBucket("Level", 2).Has(1) {
			t.Error("modifying an intersection must not modify the index")
		}
	})
}

// TestRecovery tests that misuses are reported and corrected instead of failing.
func TestRecovery(t *testing.T, newStore Constructor[int, Unit]) {
	t.Run("Recovery", func(t *testing.T) {
		t.Parallel()

		for _, mutable := range []bool{false, true} {
			t.Run(fmt.Sprintf("mutable=%v", mutable), func(t *testing.T) {
				t.Parallel()

				var rec ErrorRecorder
				store := newStore(nil, "ID", unitIndexKeys, rec.Option(), indexedstore.WithImmutableIndexKeys(!mutable))

				first := &Unit{ID: 1, Level: 1, Kind: "knight"}
				second := &Unit{ID: 1, Level: 5, Kind: "archer"}
				store.Add(first)
				if got := store.Add(second); got != second {
					t.Errorf("Add must return the given record")
				}
				if got, _ := store.Get(1); got != second {
					t.Errorf("the second record must win, got %+v", got)
				}
				if store.Len() != 1 {
					t.Errorf("unexpected Len: %d", store.Len())
				}
				if !store.IsIndexEmpty("Level", 1) || !store.IsIndexEmpty("Kind", "knight") {
					t.Error("the first record's values must not be indexed")
				}
				if _, ok := store.FindOneByIndex("Level", 5); !ok {
					t.Error("the second record's values must be indexed")
				}

				if got, ok := store.Remove(2); ok || got != nil {
					t.Errorf("unexpected Remove(2): %v", got)
				}
				store.Remove(2)
				if store.Len() != 1 {
					t.Errorf("removing an absent key must not change the store: Len=%d", store.Len())
				}

				third := &Unit{ID: 3, Level: 3, Kind: "mage"}
				if old, ok := store.Alter(third); ok || old != nil {
					t.Errorf("unexpected Alter of an absent key: %v", old)
				}
				if got, _ := store.FindOneByIndex("Kind", "mage"); got != third {
					t.Error("Alter of an absent key must add the record")
				}

				if _, ok := store.AlterInPlace(&Unit{ID: 9}); ok {
					t.Error("AlterInPlace of an absent key must fail")
				}
				if _, ok := store.AlterSingleField(9, "Note", "x"); ok {
					t.Error("AlterSingleField of an absent key must fail")
				}
				if _, ok := store.SetField(9, "Level", 1); ok {
					t.Error("SetField of an absent key must fail")
				}
				if store.Len() != 2 {
					t.Errorf("unexpected Len: %d", store.Len())
				}

				wantOps := []string{"add", "remove", "remove", "alter", "alter in place", "alter single field", "set field"}
				var gotOps []string
				for _, err := range rec.Errors {
					var opErr *indexedstore.OperationError
					if !errors.As(err, &opErr) {
						t.Fatalf("unexpected error type: %T", err)
					}
					gotOps = append(gotOps, opErr.Op)
				}
				if diff := cmp.Diff(wantOps, gotOps); diff != "" {
					t.Errorf("unexpected reports (-want +got):\n%s", diff)
				}
				if !errors.Is(rec.Errors[0], indexedstore.ErrDuplicatePrimaryKey) {
					t.Errorf("unexpected error: %v", rec.Errors[0])
				}
				for _, err := range rec.Errors[1:] {
					if !errors.Is(err, indexedstore.ErrPrimaryKeyNotFound) {
						t.Errorf("unexpected error: %v", err)
					}
				}

				CheckInvariants(t, store, "ID", unitIndexKeys)
			})
		}
	})
}

// TestFieldWrites tests AlterInPlace, AlterSingleField and SetField in both modes.
func TestFieldWrites(t *testing.T, newStore Constructor[int, Unit]) {
	t.Run("FieldWrites", func(t *testing.T) {
		t.Parallel()

		t.Run("SetField", func(t *testing.T) {
			t.Parallel()

			for _, mutable := range []bool{false, true} {
				store := newStore(newUnits(), "ID", unitIndexKeys, indexedstore.WithImmutableIndexKeys(!mutable))
				stored, _ := store.Get(1)
				if got, ok := store.SetField(1, "Level", 7); !ok || got != stored {
					t.Fatalf("SetField must return the stored record, got %v", got)
				}
				if stored.Level != 7 {
					t.Errorf("unexpected level: %d", stored.Level)
				}
				if diff := cmp.Diff([]int{2}, ids(store.FindAllByIndex("Level", 2))); diff != "" {
					t.Errorf("mutable=%v: unexpected result (-want +got):\n%s", mutable, diff)
				}
				if got, _ := store.FindOneByIndex("Level", 7); got != stored {
					t.Errorf("mutable=%v: record must move to the new bucket", mutable)
				}
				store.SetField(1, "Note", "noted")
				if stored.Note != "noted" {
					t.Errorf("unexpected note: %q", stored.Note)
				}
				CheckInvariants(t, store, "ID", unitIndexKeys)
			}
		})

		t.Run("ImmutableModeSkipsResync", func(t *testing.T) {
			t.Parallel()

			store := newStore(newUnits(), "ID", unitIndexKeys)
			stored, _ := store.Get(1)

			if got, ok := store.AlterSingleField(1, "Note", "x"); !ok || got != stored || stored.Note != "x" {
				t.Errorf("AlterSingleField must write the stored record, got %+v", got)
			}
			store.AlterSingleField(1, "Level", 9)
			if !store.IndexBucket("Level", 2).Has(1) {
				t.Error("AlterSingleField must not touch the index in immutable mode")
			}

			patch := &Unit{ID: 3, Level: 3, Kind: "knight", Note: "patched"}
			stored3, _ := store.Get(3)
			if got, ok := store.AlterInPlace(patch); !ok || got != stored3 {
				t.Fatalf("AlterInPlace must return the stored record, got %v", got)
			}
			if diff := cmp.Diff(patch, stored3); diff != "" {
				t.Errorf("unexpected result (-want +got):\n%s", diff)
			}
			if got, _ := store.Get(3); got == patch {
				t.Error("AlterInPlace must keep the stored pointer")
			}
		})

		t.Run("MutableModeResyncs", func(t *testing.T) {
			t.Parallel()

			store := newStore(newUnits(), "ID", unitIndexKeys, indexedstore.WithMutableIndexKeys())

			store.AlterSingleField(1, "Level", 9)
			if store.IndexBucket("Level", 2).Has(1) || !store.IndexBucket("Level", 9).Has(1) {
				t.Error("AlterSingleField must move the record in mutable mode")
			}

			store.AlterInPlace(&Unit{ID: 2, Level: 2, Kind: "mage"})
			if store.IndexBucket("Kind", "archer").Has(2) || !store.IndexBucket("Kind", "mage").Has(2) {
				t.Error("AlterInPlace must move the record in mutable mode")
			}
			CheckInvariants(t, store, "ID", unitIndexKeys)

			// Alter swaps the pointer and leaves the buckets alone
			swapped := &Unit{ID: 3, Level: 4, Kind: "knight"}
			store.Alter(swapped)
			if got, _ := store.Get(3); got != swapped {
				t.Error("Alter must replace the stored pointer")
			}
			if !store.IndexBucket("Level", 3).Has(3) {
				t.Error("Alter must not touch the index in mutable mode")
			}

			// a later field write resynchronizes the swapped record
			store.SetField(3, "Note", "x")
			if !store.IndexBucket("Level", 4).Has(3) || store.IndexBucket("Level", 3).Has(3) {
				t.Error("SetField must bring the index back in line with the record")
			}
			CheckInvariants(t, store, "ID", unitIndexKeys)
		})

		t.Run("PrimaryKeyIsStable", func(t *testing.T) {
			t.Parallel()

			store := newStore(newUnits(), "ID", unitIndexKeys)
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			store.SetField(1, "ID", 5)
		})
	})
}

// TestNaN tests that NaN values share one bucket.
func TestNaN(t *testing.T, newStore Constructor[int, Unit]) {
	t.Run("NaN", func(t *testing.T) {
		t.Parallel()

		for _, mutable := range []bool{false, true} {
			store := newStore([]*Unit{
				{ID: 1, Score: math.NaN()},
				{ID: 2, Score: math.NaN()},
				{ID: 3, Score: 1},
			}, "ID", []string{"Score"}, indexedstore.WithImmutableIndexKeys(!mutable))

			if diff := cmp.Diff([]int{1, 2}, ids(byID(store.FindAllByIndex("Score", math.NaN())))); diff != "" {
				t.Errorf("mutable=%v: unexpected result (-want +got):\n%s", mutable, diff)
			}

			store.SetField(1, "Score", math.NaN())
			store.SetField(3, "Score", math.NaN())
			if diff := cmp.Diff([]int{1, 2, 3}, ids(store.FindAllByIndex("Score", math.NaN()))); diff != "" {
				t.Errorf("mutable=%v: writing NaN over NaN must not move the record (-want +got):\n%s", mutable, diff)
			}
			if st := store.Stats().Indexes["Score"]; st.Buckets != 2 || st.EmptyBuckets != 1 {
				t.Errorf("mutable=%v: unexpected stats: %+v", mutable, st)
			}
			CheckInvariants(t, store, "ID", []string{"Score"})
		}
	})
}

// TestBatch tests AddMany, RemoveMany and AlterMany.
func TestBatch(t *testing.T, newStore Constructor[int, Unit]) {
	t.Run("Batch", func(t *testing.T) {
		t.Parallel()

		store := newStore(nil, "ID", unitIndexKeys)
		units := newUnits()
		if err := store.AddMany(units...); err != nil {
			t.Fatal(err)
		}
		if err := store.AlterMany(&Unit{ID: 1, Level: 3, Kind: "knight"}, &Unit{ID: 2, Level: 3, Kind: "archer"}); err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]int{1, 2, 3}, ids(byID(store.FindAllByIndex("Level", 3)))); diff != "" {
			t.Errorf("unexpected result (-want +got):\n%s", diff)
		}
		if err := store.RemoveMany(1, 3); err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]int{2}, ids(store.GetAll())); diff != "" {
			t.Errorf("unexpected result (-want +got):\n%s", diff)
		}

		err := store.AddMany(&Unit{ID: 10}, nil, &Unit{ID: 11})
		var batchErr *indexedstore.BatchError
		if !errors.As(err, &batchErr) {
			t.Fatalf("unexpected error: %v", err)
		}
		if batchErr.Op != "add many" || batchErr.Index != 1 {
			t.Errorf("unexpected batch error: %+v", batchErr)
		}
		if _, ok := store.Get(10); !ok {
			t.Error("records before the failing one must stay added")
		}
		if _, ok := store.Get(11); ok {
			t.Error("records after the failing one must not be added")
		}
		CheckInvariants(t, store, "ID", unitIndexKeys)
	})
}

// TestRandomOperations applies random operations and checks the invariants after each step.
func TestRandomOperations(t *testing.T, newStore Constructor[int, Unit]) {
	t.Run("RandomOperations", func(t *testing.T) {
		t.Parallel()

		for _, mutable := range []bool{false, true} {
			t.Run(fmt.Sprintf("mutable=%v", mutable), func(t *testing.T) {
				t.Parallel()

				rng := rand.New(rand.NewPCG(1, 2))
				kinds := []string{"knight", "archer", "mage"}
				newUnit := func(id int) *Unit {
					return &Unit{
						ID:    id,
						Level: Level(rng.IntN(4)),
						Kind:  kinds[rng.IntN(len(kinds))],
						Note:  fmt.Sprint(rng.IntN(10)),
					}
				}

				store := newStore(nil, "ID", unitIndexKeys, indexedstore.WithErrorHandler(nil), indexedstore.WithImmutableIndexKeys(!mutable))
				for range 2000 {
					id := rng.IntN(32)
					switch rng.IntN(7) {
					case 0:
						store.Add(newUnit(id))
					case 1:
						store.Remove(id)
					case 2:
						u := newUnit(id)
						if cur, ok := store.Get(id); ok && mutable {
							// mutable stores only accept replacements with the same index values
							u.Level, u.Kind = cur.Level, cur.Kind
						}
						store.Alter(u)
					case 3:
						store.SetField(id, "Level", rng.IntN(4))
					case 4:
						store.SetField(id, "Kind", kinds[rng.IntN(len(kinds))])
					case 5:
						store.AlterSingleField(id, "Note", "x")
					case 6:
						if cur, ok := store.Get(id); ok {
							u := newUnit(id)
							if !mutable {
								u.Level, u.Kind = cur.Level, cur.Kind
							}
							store.AlterInPlace(u)
						}
					}
					CheckInvariants(t, store, "ID", unitIndexKeys)
					if t.Failed() {
						return
					}
				}
			})
		}
	})
}

// TestSequence tests the insertion-ordered sequence of ArrayStore.
func TestSequence(t *testing.T, newStore Constructor[int, Unit]) {
	t.Run("Sequence", func(t *testing.T) {
		t.Parallel()

		for _, mutable := range []bool{false, true} {
			store := newStore(newUnits(), "ID", unitIndexKeys, indexedstore.WithErrorHandler(nil), indexedstore.WithImmutableIndexKeys(!mutable))

			store.Add(&Unit{ID: 4, Level: 1})
			store.Remove(2)
			store.Alter(&Unit{ID: 1, Level: 2, Kind: "knight", Note: "altered"})
			store.Add(&Unit{ID: 3, Level: 3, Kind: "knight", Note: "duplicate"})
			store.Alter(&Unit{ID: 5, Level: 5})

			if diff := cmp.Diff([]int{4, 1, 3, 5}, ids(store.GetAll())); diff != "" {
				t.Errorf("mutable=%v: unexpected result (-want +got):\n%s", mutable, diff)
			}
			if diff := cmp.Diff([]int{1, 3}, ids(store.GetAllWhere(func(u *Unit) bool {
				return u.Note != ""
			}))); diff != "" {
				t.Errorf("mutable=%v: unexpected result (-want +got):\n%s", mutable, diff)
			}
			CheckInvariants(t, store, "ID", unitIndexKeys)
		}
	})
}

// TestSnapshot tests that GetAll follows every structural mutation.
func TestSnapshot(t *testing.T, newStore Constructor[int, Unit]) {
	t.Run("Snapshot", func(t *testing.T) {
		t.Parallel()

		store := newStore(newUnits(), "ID", unitIndexKeys)
		if len(store.GetAll()) != 3 {
			t.Fatalf("unexpected GetAll: %v", ids(store.GetAll()))
		}

		added := &Unit{ID: 4}
		store.Add(added)
		if !slices.Contains(store.GetAll(), added) {
			t.Error("GetAll must include an added record")
		}

		store.Remove(1)
		if slices.ContainsFunc(store.GetAll(), func(u *Unit) bool { return u.ID == 1 }) {
			t.Error("GetAll must exclude a removed record")
		}

		altered := &Unit{ID: 2, Level: 9}
		store.Alter(altered)
		if !slices.Contains(store.GetAll(), altered) {
			t.Error("GetAll must include an altered record")
		}

		stored, _ := store.Get(3)
		store.AlterInPlace(&Unit{ID: 3, Level: 3, Kind: "knight", Note: "in place"})
		if !slices.Contains(store.GetAll(), stored) || stored.Note != "in place" {
			t.Error("GetAll must keep the record altered in place")
		}
	})
}

// TestRemoveWhileRanging tests removing records while ranging over GetAll.
func TestRemoveWhileRanging(t *testing.T, newStore Constructor[int, Unit]) {
	t.Run("RemoveWhileRanging", func(t *testing.T) {
		t.Parallel()

		store := newStore([]*Unit{
			{ID: 1, Level: 1},
			{ID: 2, Level: 1},
			{ID: 3, Level: 2},
			{ID: 4, Level: 2},
		}, "ID", []string{"Level"})

		visited := 0
		for _, u := range store.GetAll() {
			visited++
			if u.Level == 1 {
				store.Remove(u.ID)
			}
		}
		if visited != 4 {
			t.Errorf("every record must be visited once, visited %d", visited)
		}
		if diff := cmp.Diff([]int{3, 4}, ids(byID(store.GetAll()))); diff != "" {
			t.Errorf("unexpected result (-want +got):\n%s", diff)
		}

		// a slice taken before further mutations keeps its contents
		before := store.GetAll()
		store.Remove(3)
		store.Add(&Unit{ID: 5, Level: 1})
		if diff := cmp.Diff([]int{3, 4}, ids(byID(before))); diff != "" {
			t.Errorf("unexpected result (-want +got):\n%s", diff)
		}
		CheckInvariants(t, store, "ID", []string{"Level"})
	})
}

// TestUUIDKeys tests a store keyed by UUIDs.
func TestUUIDKeys(t *testing.T, newStore Constructor[uuid.UUID, Session]) {
	t.Run("UUIDKeys", func(t *testing.T) {
		t.Parallel()

		sessions := []*Session{
			{ID: uuid.New(), User: "alice", Room: 1},
			{ID: uuid.New(), User: "bob", Room: 1},
			{ID: uuid.New(), User: "alice", Room: 2},
		}
		store := newStore(sessions, "ID", []string{"User", "Room"})

		if got, ok := store.Get(sessions[1].ID); !ok || got != sessions[1] {
			t.Errorf("unexpected Get: %v", got)
		}
		if got, ok := store.FindOneByIndexIntersection(indexedstore.Pair("User", "alice"), indexedstore.Pair("Room", 2)); !ok || got != sessions[2] {
			t.Errorf("unexpected intersection: %v", got)
		}
		if _, ok := store.Remove(uuid.New()); ok {
			t.Error("removing an unknown session must fail")
		}
		store.Remove(sessions[0].ID)
		if diff := cmp.Diff([]*Session{sessions[2]}, store.FindAllByIndex("User", "alice")); diff != "" {
			t.Errorf("unexpected result (-want +got):\n%s", diff)
		}
		CheckInvariants(t, store, "ID", []string{"User", "Room"})
	})
}

// TestConstruction tests declaration checks and building independent stores concurrently.
func TestConstruction(t *testing.T, newStore Constructor[int, Unit]) {
	t.Run("Construction", func(t *testing.T) {
		t.Parallel()

		for _, tt := range []struct {
			name       string
			primaryKey string
			indexKeys  []string
		}{
			{name: "unknown primary key", primaryKey: "Missing"},
			{name: "primary key of another type", primaryKey: "Kind"},
			{name: "unknown index key", primaryKey: "ID", indexKeys: []string{"Missing"}},
			{name: "duplicated index key", primaryKey: "ID", indexKeys: []string{"Level", "Level"}},
		} {
			t.Run(tt.name, func(t *testing.T) {
				defer func() {
					if recover() == nil {
						t.Error("expected panic")
					}
				}()
				newStore(nil, tt.primaryKey, tt.indexKeys)
			})
		}

		var eg errgroup.Group
		stores := make([]indexedstore.Store[int, Unit], 8)
		for i := range stores {
			eg.Go(func() error {
				units := make([]*Unit, 64)
				for j := range units {
					units[j] = &Unit{ID: j, Level: Level(i), Kind: fmt.Sprint(j % 3)}
				}
				stores[i] = newStore(units, "ID", unitIndexKeys, indexedstore.WithErrorHandler(func(err error) {
					panic(err)
				}))
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			t.Fatal(err)
		}
		for i, store := range stores {
			if got := len(store.FindAllByIndex("Level", i)); got != 64 {
				t.Errorf("store #%d: unexpected bucket size %d", i, got)
			}
			CheckInvariants(t, store, "ID", unitIndexKeys)
		}
	})
}

// TestAll runs every test case of this package.
func TestAll(t *testing.T, newStore Constructor[int, Unit], newSessionStore Constructor[uuid.UUID, Session]) {
	TestScenario(t, newStore)
	TestLookup(t, newStore)
	TestIntersection(t, newStore)
	TestRecovery(t, newStore)
	TestFieldWrites(t, newStore)
	TestNaN(t, newStore)
	TestBatch(t, newStore)
	TestRandomOperations(t, newStore)
	TestSnapshot(t, newStore)
	TestRemoveWhileRanging(t, newStore)
	TestUUIDKeys(t, newSessionStore)
	TestConstruction(t, newStore)
}
