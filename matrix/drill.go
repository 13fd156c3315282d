package matrix

import (
	"sort"
	"sync"
)

// DetailDrill tracks which rows of a flat table have their detail panel
// open. Unlike the hierarchical matrix, expansion here is single-level:
// each row toggles independently and the row set itself never changes.
// Rows are addressed by stable identifier, so the state survives reorders
// and refreshes of the underlying table. Safe for concurrent use.
type DetailDrill struct {
	mu       sync.RWMutex
	expanded map[string]bool
}

// NewDetailDrill creates an empty drill state: every detail panel closed.
func NewDetailDrill() *DetailDrill {
	return &DetailDrill{
		expanded: make(map[string]bool),
	}
}

// Toggle flips the panel for rowID and reports the new state.
func (d *DetailDrill) Toggle(rowID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.expanded[rowID] {
		delete(d.expanded, rowID)
		return false
	}
	d.expanded[rowID] = true
	return true
}

// IsExpanded reports whether rowID's detail panel is open.
func (d *DetailDrill) IsExpanded(rowID string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.expanded[rowID]
}

// Glyph returns the toggle-column text for rowID.
func (d *DetailDrill) Glyph(rowID string) string {
	if d.IsExpanded(rowID) {
		return StateExpanded.Glyph()
	}
	return StateCollapsed.Glyph()
}

// ExpandedIDs returns the open rows in sorted order.
func (d *DetailDrill) ExpandedIDs() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ids := make([]string, 0, len(d.expanded))
	for id := range d.expanded {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// CollapseAll closes every detail panel.
func (d *DetailDrill) CollapseAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.expanded = make(map[string]bool)
}

// Len reports the number of open panels.
func (d *DetailDrill) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.expanded)
}
