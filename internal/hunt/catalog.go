package hunt

import "log/slog"

// Catalog holds the loaded collectible items and their collected flags.
// Definitions are validated once at load; a session reset clears the flags
// without refetching, so resets are cheap and cannot lose definitions.
type Catalog struct {
	log   *slog.Logger
	items []*Item
	byID  map[string]*Item

	// Hooks fired on MarkCollected. OnAllCollected signals the local win
	// condition: every item in this catalog collected. The global
	// cross-team win is detected separately through the ledger.
	OnCollected    func(collected, total int)
	OnAllCollected func()
}

func NewCatalog(log *slog.Logger) *Catalog {
	return &Catalog{log: log, byID: make(map[string]*Item)}
}

// SetItems replaces the catalog contents from freshly fetched definitions.
// Definitions without exactly three questions are skipped with a warning;
// the rest of the load proceeds. Returns how many items were kept.
func (c *Catalog) SetItems(defs []ItemDef) int {
	c.items = c.items[:0]
	clear(c.byID)

	for _, def := range defs {
		if len(def.Questions) != 3 {
			c.log.Warn("skipping malformed item definition",
				"item", def.ID, "name", def.Name, "questions", len(def.Questions))
			continue
		}
		item := &Item{
			ID:        def.ID,
			Name:      def.Name,
			PrefabID:  def.PrefabID,
			Questions: def.Questions,
		}
		c.items = append(c.items, item)
		c.byID[item.ID] = item
	}

	c.log.Info("item catalog loaded", "items", len(c.items), "skipped", len(defs)-len(c.items))
	return len(c.items)
}

// Item looks up a catalog item by id.
func (c *Catalog) Item(id string) *Item {
	return c.byID[id]
}

// Items returns the full catalog in load order.
func (c *Catalog) Items() []*Item {
	return c.items
}

func (c *Catalog) Total() int {
	return len(c.items)
}

func (c *Catalog) Loaded() bool {
	return len(c.items) > 0
}

func (c *Catalog) CollectedCount() int {
	n := 0
	for _, item := range c.items {
		if item.Collected {
			n++
		}
	}
	return n
}

// MarkCollected sets the item's flag and fires the collection hooks.
// Already-collected items are a no-op.
func (c *Catalog) MarkCollected(id string) {
	item := c.byID[id]
	if item == nil || item.Collected {
		return
	}
	item.Collected = true

	collected, total := c.CollectedCount(), c.Total()
	c.log.Info("item collected", "item", item.ID, "name", item.Name,
		"collected", collected, "total", total)

	if c.OnCollected != nil {
		c.OnCollected(collected, total)
	}
	if collected == total && total > 0 && c.OnAllCollected != nil {
		c.OnAllCollected()
	}
}

// Reset restores every item to uncollected. Definitions stay loaded.
func (c *Catalog) Reset() {
	for _, item := range c.items {
		item.Collected = false
	}
}
