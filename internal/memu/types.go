package memu

// MemorizeResult reports the outcome of a memorize call.
type MemorizeResult struct {
	// ID is the stored record's identifier. Empty when Stored is false.
	ID string `json:"id,omitempty"`
	// Stored is false only in auto mode when no trigger rule matched.
	Stored bool `json:"stored"`
	// Category is the trigger category the content matched, or the
	// explicit-mode default when nothing matched.
	Category string `json:"category,omitempty"`
}

// RetrieveResult is one memory returned by a retrieve call.
type RetrieveResult struct {
	Content  string  `json:"content"`
	Category string  `json:"category"`
	Score    float32 `json:"score"`
}
