package iterutil_test

import (
	"iter"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/karupanerura/indexed-store/internal/iterutil"
)

type record struct {
	ID   int
	Name string
}

func TestMap(t *testing.T) {
	t.Parallel()

	records := map[int]*record{
		1: {ID: 1, Name: "alice"},
		2: {ID: 2, Name: "bob"},
		3: {ID: 3, Name: "carol"},
	}
	lookup := func(pk int) *record {
		return records[pk]
	}

	for _, tt := range []struct {
		name string
		pks  []int
		want []*record
	}{
		{
			name: "no keys",
			pks:  nil,
			want: nil,
		},
		{
			name: "keeps key order",
			pks:  []int{3, 1, 2},
			want: []*record{records[3], records[1], records[2]},
		},
		{
			name: "unknown key maps to nil",
			pks:  []int{2, 9},
			want: []*record{records[2], nil},
		},
		{
			name: "repeated key",
			pks:  []int{1, 1},
			want: []*record{records[1], records[1]},
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := slices.Collect(iterutil.Map(slices.Values(tt.pks), lookup))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("unexpected result (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMap_Break(t *testing.T) {
	t.Parallel()

	looked := 0
	pks := iter.Seq[int](func(yield func(int) bool) {
		for pk := 0; ; pk++ {
			if !yield(pk) {
				return
			}
		}
	})
	lookup := func(pk int) *record {
		looked++
		return &record{ID: pk}
	}

	for r := range iterutil.Map(pks, lookup) {
		if r.ID == 20 {
			break
		}
	}

	if looked != 21 {
		t.Errorf("unexpected lookup count: %d, should stop right after the 21st", looked)
	}
}

func TestFilter(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name  string
		input []uint8
		want  []uint8
	}{
		{
			name:  "empty",
			input: nil,
			want:  nil,
		},
		{
			name:  "keeps order",
			input: []uint8{5, 2, 4, 1, 6},
			want:  []uint8{2, 4, 6},
		},
		{
			name:  "none match",
			input: []uint8{1, 3, 5},
			want:  nil,
		},
		{
			name:  "with duplicates",
			input: []uint8{2, 2, 3, 4, 4},
			want:  []uint8{2, 2, 4, 4},
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			even := func(v uint8) bool {
				return v%2 == 0
			}
			got := slices.Collect(iterutil.Filter(slices.Values(tt.input), even))

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("unexpected result (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFilter_Break(t *testing.T) {
	t.Parallel()

	counter := uint8(0)
	seq := iter.Seq[uint8](func(yield func(uint8) bool) {
		for {
			if !yield(counter) {
				return
			}
			counter++
		}
	})

	even := func(v uint8) bool {
		return v%2 == 0
	}

	for v := range iterutil.Filter(seq, even) {
		if v == 20 {
			break
		}
	}

	if counter != 20 {
		t.Errorf("unexpected counter value: %d, should be exactly 20", counter)
	}
}
