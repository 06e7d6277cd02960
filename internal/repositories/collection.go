package repository

// Collection is a typed view over one slice of the document being mutated.
type Collection[T any] struct {
	items *[]T
	key   func(T) string
}

func newCollection[T any](items *[]T, key func(T) string) *Collection[T] {
	return &Collection[T]{items: items, key: key}
}

func (c *Collection[T]) Get(id string) (T, bool) {
	for _, item := range *c.items {
		if c.key(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Put replaces the item with the same key or appends it.
func (c *Collection[T]) Put(item T) {
	id := c.key(item)
	for i, existing := range *c.items {
		if c.key(existing) == id {
			(*c.items)[i] = item
			return
		}
	}
	*c.items = append(*c.items, item)
}

func (c *Collection[T]) First(predicate func(T) bool) (T, bool) {
	for _, item := range *c.items {
		if predicate(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// ListWhere returns a copy of the matching items in stored order.
func (c *Collection[T]) ListWhere(predicate func(T) bool) []T {
	out := make([]T, 0, len(*c.items))
	for _, item := range *c.items {
		if predicate == nil || predicate(item) {
			out = append(out, item)
		}
	}
	return out
}

func (c *Collection[T]) All() []T {
	return c.ListWhere(nil)
}

func (c *Collection[T]) DeleteWhere(predicate func(T) bool) int {
	kept := (*c.items)[:0]
	removed := 0
	for _, item := range *c.items {
		if predicate(item) {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	*c.items = kept
	return removed
}

func (c *Collection[T]) Len() int {
	return len(*c.items)
}
