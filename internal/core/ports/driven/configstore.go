package driven

// ConfigStore is the persisted key/value layer under domain.Settings.
// Keys are dotted section paths such as "retrieval.top_k". Values keep
// the type the backing format decoded them as, so readers must accept
// int64 and float64 for numbers.
type ConfigStore interface {
	Get(key string) (any, bool)

	// Set stores value under key and persists it before returning.
	Set(key string, value any) error

	// Path names where the store persists, for display.
	Path() string
}
