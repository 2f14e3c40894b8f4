package panicutil_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/karupanerura/indexed-store/internal/panicutil"
	"github.com/sourcegraph/conc/panics"
)

func TestEach(t *testing.T) {
	t.Parallel()

	t.Run("Normal return", func(t *testing.T) {
		t.Parallel()

		var visited []int
		i, err := panicutil.Each([]int{1, 2, 3}, func(v int) {
			visited = append(visited, v)
		})
		if err != nil {
			t.Errorf("expected no error, got: %v", err)
		}
		if i != -1 {
			t.Errorf("expected index -1, got: %d", i)
		}
		if diff := cmp.Diff([]int{1, 2, 3}, visited); diff != "" {
			t.Errorf("unexpected visits (-want +got):\n%s", diff)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		t.Parallel()

		i, err := panicutil.Each(nil, func(int) {
			t.Error("must not be called")
		})
		if i != -1 || err != nil {
			t.Errorf("unexpected result: %d, %v", i, err)
		}
	})

	t.Run("Panic stops the iteration", func(t *testing.T) {
		t.Parallel()

		var visited []int
		i, err := panicutil.Each([]int{1, 2, 3, 4}, func(v int) {
			if v == 3 {
				panic("boom")
			}
			visited = append(visited, v)
		})
		if i != 2 {
			t.Errorf("expected index 2, got: %d", i)
		}
		var recoveredErr *panics.ErrRecovered
		if !errors.As(err, &recoveredErr) {
			t.Fatalf("expected error to be of type *panics.ErrRecovered, got: %T", err)
		}
		if recoveredErr.Value != "boom" {
			t.Errorf("expected panic value 'boom', got: %v", recoveredErr.Value)
		}
		if diff := cmp.Diff([]int{1, 2}, visited); diff != "" {
			t.Errorf("unexpected visits (-want +got):\n%s", diff)
		}
	})

	t.Run("Panic with error", func(t *testing.T) {
		t.Parallel()

		customErr := errors.New("custom error")
		_, err := panicutil.Each([]int{1}, func(int) {
			panic(customErr)
		})
		var recoveredErr *panics.ErrRecovered
		if !errors.As(err, &recoveredErr) {
			t.Fatalf("expected error to be of type *panics.ErrRecovered, got: %T", err)
		}
		if recoveredErr.Value != customErr {
			t.Errorf("expected panic value custom error, got: %v", err)
		}
	})
}
