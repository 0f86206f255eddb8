package catalog

import "strconv"

// Item is one catalog entry. ID is the Steam classid of the item and Name
// is the display name used as the lookup key on the market price source.
type Item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Catalog is the fixed set of tracked items. It is loaded once at startup
// and never mutated.
type Catalog struct {
	byID   map[string]Item
	byName map[string]Item
	items  []Item
	def    Item
}

// New builds a catalog from the given items. The first item is the default
// substituted for unknown lookup keys.
func New(items []Item) *Catalog {
	c := &Catalog{
		byID:   make(map[string]Item, len(items)),
		byName: make(map[string]Item, len(items)),
		items:  items,
	}
	for _, it := range items {
		c.byID[it.ID] = it
		c.byName[it.Name] = it
	}
	if len(items) > 0 {
		c.def = items[0]
	}
	return c
}

// Default returns the catalog of tracked Rust items.
func Default() *Catalog {
	return New([]Item{
		{ID: "4666163159", Name: "Nuclear Fanatic Facemask"},
		{ID: "4666163162", Name: "Nuclear Fanatic Hoodie"},
		{ID: "4666163161", Name: "Nuclear Fanatic Pants"},
		{ID: "4666163073", Name: "Nuclear Fanatic Chest Plate"},
	})
}

// Resolve maps a lookup key to a catalog item. Numeric keys are treated as
// item IDs, anything else as a display name. Unknown keys resolve to the
// default item rather than failing.
func (c *Catalog) Resolve(key string) Item {
	if _, err := strconv.ParseInt(key, 10, 64); err == nil {
		if it, ok := c.byID[key]; ok {
			return it
		}
		return c.def
	}
	if it, ok := c.byName[key]; ok {
		return it
	}
	return c.def
}

// Items returns the catalog entries in declaration order.
func (c *Catalog) Items() []Item {
	return c.items
}

// DefaultItem returns the item substituted for unknown lookup keys.
func (c *Catalog) DefaultItem() Item {
	return c.def
}
