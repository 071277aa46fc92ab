package buildinfo

var (
	// Version is stamped via ldflags at release build time.
	Version = "dev"
	// Commit is stamped via ldflags at release build time.
	Commit = "none"
	// Date is stamped via ldflags at release build time.
	Date = "unknown"
)
