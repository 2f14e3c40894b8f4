package indexedstore_test

import (
	"fmt"
	"strings"
	"testing"

	indexedstore "github.com/karupanerura/indexed-store"
)

type Tagged struct {
	ID    int
	Tag   any
	Label struct{ Value any }
	Name  string
}

func TestNewStore_IndexKeyTypes(t *testing.T) {
	t.Parallel()

	constructors := map[string]func(records []*Tagged, indexKeys []string){
		"MapStore": func(records []*Tagged, indexKeys []string) {
			indexedstore.NewMapStore[int](records, "ID", indexKeys)
		},
		"ArrayStore": func(records []*Tagged, indexKeys []string) {
			indexedstore.NewArrayStore[int](records, "ID", indexKeys)
		},
	}
	for name, newStore := range constructors {
		for _, tt := range []struct {
			key     string
			records []*Tagged
		}{
			{key: "Tag", records: nil},
			{key: "Tag", records: []*Tagged{{ID: 1, Tag: []int{1}}}},
			{key: "Label", records: []*Tagged{{ID: 1, Label: struct{ Value any }{Value: map[string]int{}}}}},
		} {
			t.Run(fmt.Sprintf("%s/%s/%d", name, tt.key, len(tt.records)), func(t *testing.T) {
				t.Parallel()

				defer func() {
					r := recover()
					msg, _ := r.(string)
					if !strings.Contains(msg, "index key "+tt.key) {
						t.Errorf("expected the declaration to be rejected, got: %v", r)
					}
				}()
				newStore(tt.records, []string{tt.key})
			})
		}
	}

	// a plain field of the same type stays usable
	store := indexedstore.NewMapStore[int]([]*Tagged{{ID: 1, Tag: []int{1}, Name: "a"}}, "ID", []string{"Name"})
	if _, ok := store.FindOneByIndex("Name", "a"); !ok {
		t.Error("records with unhashable non-indexed fields must be stored")
	}
	store.AlterInPlace(&Tagged{ID: 1, Tag: []int{2}, Name: "a"})
	if got, _ := store.Get(1); fmt.Sprint(got.Tag) != "[2]" {
		t.Errorf("unexpected tag: %v", got.Tag)
	}
}
