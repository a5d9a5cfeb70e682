package sqlstore

var (
	_ AttemptLedger = (*AttemptStore)(nil)
	_ AttemptLedger = (*CachedAttemptStore)(nil)
)
