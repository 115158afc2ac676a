package logging

import "log/slog"

// WithTable returns a logger carrying the table name.
func WithTable(name string) *slog.Logger {
	return GetLogger().With("table", name)
}

// WithPage returns a logger carrying a page id. Used by the storage
// layer so page-level traces can be correlated.
func WithPage(pageID uint32) *slog.Logger {
	return GetLogger().With("page_id", pageID)
}
