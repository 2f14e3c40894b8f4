package countedset_test

import (
	"maps"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/karupanerura/indexed-store/countedset"
)

type op struct {
	del bool
	key uint8
	val string
}

func TestSet(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name     string
		ops      []op
		wantKeys []uint8
		wantVals []string
	}{
		{
			name:     "empty",
			ops:      nil,
			wantKeys: nil,
			wantVals: nil,
		},
		{
			name:     "insert keeps order",
			ops:      []op{{key: 3, val: "c"}, {key: 1, val: "a"}, {key: 2, val: "b"}},
			wantKeys: []uint8{3, 1, 2},
			wantVals: []string{"c", "a", "b"},
		},
		{
			name:     "overwrite is idempotent for size and keeps position",
			ops:      []op{{key: 1, val: "a"}, {key: 2, val: "b"}, {key: 1, val: "A"}},
			wantKeys: []uint8{1, 2},
			wantVals: []string{"A", "b"},
		},
		{
			name:     "delete absent key is no-op",
			ops:      []op{{key: 1, val: "a"}, {del: true, key: 9}, {del: true, key: 9}},
			wantKeys: []uint8{1},
			wantVals: []string{"a"},
		},
		{
			name:     "delete head middle and tail",
			ops:      []op{{key: 1}, {key: 2}, {key: 3}, {key: 4}, {key: 5}, {del: true, key: 1}, {del: true, key: 3}, {del: true, key: 5}},
			wantKeys: []uint8{2, 4},
			wantVals: []string{"", ""},
		},
		{
			name:     "reinsert after delete moves to the end",
			ops:      []op{{key: 1}, {key: 2}, {del: true, key: 1}, {key: 1}},
			wantKeys: []uint8{2, 1},
			wantVals: []string{"", ""},
		},
		{
			name:     "delete everything",
			ops:      []op{{key: 1}, {key: 2}, {del: true, key: 2}, {del: true, key: 1}},
			wantKeys: nil,
			wantVals: nil,
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := countedset.New[uint8, string]()
			for _, o := range tt.ops {
				if o.del {
					s.Delete(o.key)
				} else {
					s.Set(o.key, o.val)
				}
			}

			var gotKeys []uint8
			var gotVals []string
			for k, v := range s.All() {
				gotKeys = append(gotKeys, k)
				gotVals = append(gotVals, v)
			}
			if diff := cmp.Diff(tt.wantKeys, gotKeys); diff != "" {
				t.Errorf("unexpected keys (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantVals, gotVals); diff != "" {
				t.Errorf("unexpected values (-want +got):\n%s", diff)
			}
			if s.Len() != len(tt.wantKeys) {
				t.Errorf("unexpected size: got %d, want %d", s.Len(), len(tt.wantKeys))
			}
			for _, k := range tt.wantKeys {
				if !s.Has(k) {
					t.Errorf("key %d must be a member", k)
				}
			}

			k, _, ok := s.First()
			if len(tt.wantKeys) == 0 {
				if ok {
					t.Errorf("empty set must not have a first member, got %d", k)
				}
			} else if !ok || k != tt.wantKeys[0] {
				t.Errorf("unexpected first member: got (%d, %v), want %d", k, ok, tt.wantKeys[0])
			}
		})
	}
}

func TestSet_Cardinality(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewPCG(1, 2))
	s := countedset.New[uint8, struct{}]()
	model := map[uint8]struct{}{}
	for range 10000 {
		key := uint8(r.IntN(32))
		if r.IntN(3) == 0 {
			s.Delete(key)
			delete(model, key)
		} else {
			s.Set(key, struct{}{})
			model[key] = struct{}{}
		}

		if s.Len() != len(model) {
			t.Fatalf("size drifted: got %d, want %d", s.Len(), len(model))
		}
	}

	got := slices.Sorted(s.Keys())
	want := slices.Sorted(maps.Keys(model))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected members (-want +got):\n%s", diff)
	}
}

func TestSet_ZeroValueAndNil(t *testing.T) {
	t.Parallel()

	var nilSet *countedset.Set[string, int]
	if nilSet.Len() != 0 || nilSet.Has("a") {
		t.Error("nil set must behave as empty")
	}
	if _, ok := nilSet.Get("a"); ok {
		t.Error("nil set must not return values")
	}
	if got := slices.Collect(nilSet.Keys()); got != nil {
		t.Errorf("nil set must not yield keys: %v", got)
	}

	var s countedset.Set[string, int]
	s.Set("a", 1)
	if v, ok := s.Get("a"); !ok || v != 1 {
		t.Errorf("unexpected value: got (%d, %v)", v, ok)
	}
	if s.Len() != 1 {
		t.Errorf("unexpected size: %d", s.Len())
	}
}

func TestSet_DeleteWhileIterating(t *testing.T) {
	t.Parallel()

	s := countedset.New[int, struct{}]()
	for i := range 6 {
		s.Set(i, struct{}{})
	}

	var visited []int
	for k := range s.Keys() {
		visited = append(visited, k)
		s.Delete(k)
		s.Delete(k + 1)
	}

	if diff := cmp.Diff([]int{0, 2, 4}, visited); diff != "" {
		t.Errorf("unexpected visit order (-want +got):\n%s", diff)
	}
	if s.Len() != 0 {
		t.Errorf("set must be empty, got %d", s.Len())
	}
}

func TestSet_Break(t *testing.T) {
	t.Parallel()

	s := countedset.New[int, struct{}]()
	for i := range 10 {
		s.Set(i, struct{}{})
	}

	var visited []int
	for k := range s.Keys() {
		if k == 3 {
			break
		}
		visited = append(visited, k)
	}
	if diff := cmp.Diff([]int{0, 1, 2}, visited); diff != "" {
		t.Errorf("unexpected visit order (-want +got):\n%s", diff)
	}
}

func TestSet_Clone(t *testing.T) {
	t.Parallel()

	s := countedset.New[int, string]()
	s.Set(2, "b")
	s.Set(1, "a")

	c := s.Clone()
	c.Set(3, "c")
	s.Delete(2)

	if diff := cmp.Diff([]int{2, 1, 3}, slices.Collect(c.Keys())); diff != "" {
		t.Errorf("unexpected clone keys (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1}, slices.Collect(s.Keys())); diff != "" {
		t.Errorf("unexpected source keys (-want +got):\n%s", diff)
	}
}
