package ollama

// HistoryEntry is one message in a conversation.
type HistoryEntry struct {
	// Role is the speaker: "user" or "assistant".
	Role string
	// Content is the message text.
	Content string
	// Context is the server's continuation token, set on assistant entries.
	Context []int
}

// History is a bounded conversation log. When the cap is exceeded the
// oldest entry is dropped.
type History struct {
	entries    []HistoryEntry
	maxEntries int
}

// NewHistory creates a history holding at most maxEntries messages.
func NewHistory(maxEntries int) *History {
	return &History{maxEntries: maxEntries}
}

// Add appends an entry, evicting the oldest when over capacity.
func (h *History) Add(role, content string, context []int) {
	h.entries = append(h.entries, HistoryEntry{Role: role, Content: content, Context: context})
	if len(h.entries) > h.maxEntries {
		h.entries = h.entries[1:]
	}
}

// Entries returns a copy of the history, oldest first.
func (h *History) Entries() []HistoryEntry {
	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of stored entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Clear discards all entries.
func (h *History) Clear() {
	h.entries = nil
}

// LastContext returns the continuation token from the most recent assistant
// entry that carries one, or nil.
func (h *History) LastContext() []int {
	for i := len(h.entries) - 1; i >= 0; i-- {
		if h.entries[i].Role == "assistant" && h.entries[i].Context != nil {
			return h.entries[i].Context
		}
	}
	return nil
}
