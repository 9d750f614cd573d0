package ordering

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func siblings(n int) []Item {
	items := make([]Item, n)
	for i := range items {
		items[i] = Item{ID: primitive.NewObjectID(), Order: i + 1}
	}
	return items
}

func TestApply_Permutation(t *testing.T) {
	cur := siblings(4)
	changes := []Item{
		{ID: cur[0].ID, Order: 4},
		{ID: cur[1].ID, Order: 3},
		{ID: cur[2].ID, Order: 2},
		{ID: cur[3].ID, Order: 1},
	}
	got, err := Apply(cur, changes)
	if err != nil {
		t.Fatal(err)
	}
	for i, it := range got {
		if it.ID != cur[3-i].ID || it.Order != i+1 {
			t.Fatalf("position %d = %+v", i, it)
		}
	}
	if !Unique(got) {
		t.Fatal("orders not unique")
	}
}

func TestApply_CallerSpecifiedGaps(t *testing.T) {
	cur := siblings(3)
	got, err := Apply(cur, []Item{{ID: cur[0].ID, Order: 10}, {ID: cur[1].ID, Order: 20}, {ID: cur[2].ID, Order: 30}})
	if err != nil {
		t.Fatal(err)
	}
	if got[2].Order != 30 || got[2].ID != cur[2].ID {
		t.Fatalf("last = %+v", got[2])
	}
}

func TestApply_Rejects(t *testing.T) {
	cur := siblings(3)
	tests := []struct {
		name    string
		changes []Item
		want    error
	}{
		{"collides with untouched sibling", []Item{{ID: cur[0].ID, Order: 2}}, ErrDuplicateOrder},
		{"duplicate target order", []Item{{ID: cur[0].ID, Order: 5}, {ID: cur[1].ID, Order: 5}}, ErrDuplicateOrder},
		{"unknown id", []Item{{ID: primitive.NewObjectID(), Order: 9}}, ErrUnknownID},
		{"repeated id", []Item{{ID: cur[0].ID, Order: 7}, {ID: cur[0].ID, Order: 8}}, ErrDuplicateID},
		{"zero order", []Item{{ID: cur[0].ID, Order: 0}}, ErrInvalidOrder},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := append([]Item(nil), cur...)
			_, err := Apply(cur, tt.changes)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			for i := range cur {
				if cur[i] != before[i] {
					t.Fatal("input slice was modified")
				}
			}
		})
	}
}

func TestCompactAndNext(t *testing.T) {
	items := []Item{
		{ID: primitive.NewObjectID(), Order: 7},
		{ID: primitive.NewObjectID(), Order: 2},
		{ID: primitive.NewObjectID(), Order: 4},
	}
	if n := Next(items); n != 8 {
		t.Fatalf("Next = %d, want 8", n)
	}
	got := Compact(items)
	if got[0].ID != items[1].ID || got[1].ID != items[2].ID || got[2].ID != items[0].ID {
		t.Fatalf("Compact changed relative order: %+v", got)
	}
	for i, it := range got {
		if it.Order != i+1 {
			t.Fatalf("order at %d = %d", i, it.Order)
		}
	}
	if changed := Changed(items, got); len(changed) != 3 {
		t.Fatalf("Changed = %d items, want 3", len(changed))
	}
	if Next(nil) != 1 {
		t.Fatal("Next(nil) should be 1")
	}
}
