// Package ordering keeps integer positions of sibling entities (days in a
// plan, exercises in a day) unique.
package ordering

import (
	"errors"
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrUnknownID      = errors.New("id is not a sibling of this parent")
	ErrDuplicateID    = errors.New("id listed more than once")
	ErrDuplicateOrder = errors.New("order values must be unique")
	ErrInvalidOrder   = errors.New("order values must be at least 1")
)

// Item is an entity id with its position among siblings.
type Item struct {
	ID    primitive.ObjectID `json:"id"`
	Order int                `json:"order"`
}

// Apply merges the requested position changes into the full sibling list and
// returns the resulting list sorted by order. Siblings not mentioned keep
// their position. The result is rejected unless every order is unique.
func Apply(current []Item, changes []Item) ([]Item, error) {
	index := make(map[primitive.ObjectID]int, len(current))
	for i, it := range current {
		index[it.ID] = i
	}
	next := make([]Item, len(current))
	copy(next, current)

	seen := make(map[primitive.ObjectID]bool, len(changes))
	for _, ch := range changes {
		i, ok := index[ch.ID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownID, ch.ID.Hex())
		}
		if seen[ch.ID] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, ch.ID.Hex())
		}
		if ch.Order < 1 {
			return nil, ErrInvalidOrder
		}
		seen[ch.ID] = true
		next[i].Order = ch.Order
	}
	if !Unique(next) {
		return nil, ErrDuplicateOrder
	}
	Sort(next)
	return next, nil
}

// Compact renumbers items 1..N keeping their relative order.
func Compact(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	Sort(out)
	for i := range out {
		out[i].Order = i + 1
	}
	return out
}

// Next returns the position for an item appended after all siblings.
func Next(items []Item) int {
	max := 0
	for _, it := range items {
		if it.Order > max {
			max = it.Order
		}
	}
	return max + 1
}

// Unique reports whether no two items share an order value.
func Unique(items []Item) bool {
	seen := make(map[int]bool, len(items))
	for _, it := range items {
		if seen[it.Order] {
			return false
		}
		seen[it.Order] = true
	}
	return true
}

// Sort orders items by position, ties broken by id for determinism.
func Sort(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Order != items[j].Order {
			return items[i].Order < items[j].Order
		}
		return items[i].ID.Hex() < items[j].ID.Hex()
	})
}

// Changed returns the items of next whose order differs from before.
func Changed(before, next []Item) []Item {
	prev := make(map[primitive.ObjectID]int, len(before))
	for _, it := range before {
		prev[it.ID] = it.Order
	}
	var out []Item
	for _, it := range next {
		if o, ok := prev[it.ID]; !ok || o != it.Order {
			out = append(out, it)
		}
	}
	return out
}
