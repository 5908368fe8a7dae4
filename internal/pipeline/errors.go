package pipeline

// The pipeline surfaces exactly four failure classes. Each aborts the run
// and names its stage; row-level data-quality issues are warning counts,
// never errors.

// ConfigError reports missing or invalid configuration, including an
// unreadable enrichment table. Raised during preflight, before any network
// or database write.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return "config: " + e.Err.Error() }
func (e *ConfigError) Unwrap() error { return e.Err }

// FetchError reports a failed upstream read: network error, non-2xx status,
// or malformed payload. There is no retry; the single attempt's failure
// aborts the run.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string { return "fetch: " + e.Err.Error() }
func (e *FetchError) Unwrap() error { return e.Err }

// EmptyDatasetError reports that cleaning left zero usable rows.
type EmptyDatasetError struct {
	Fetched int // raw rows that went into cleaning
}

func (e *EmptyDatasetError) Error() string {
	return "clean: no usable rows after cleaning"
}

// LoadError reports a database write failure. The load transaction has been
// rolled back; the target table is unchanged.
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string { return "load: " + e.Err.Error() }
func (e *LoadError) Unwrap() error { return e.Err }
