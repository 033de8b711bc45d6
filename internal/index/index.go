package index

// FileIndex defines the interface for vault file index operations.
// Consumers should depend on this interface rather than the concrete *DB
// type to facilitate testing with mocks.
type FileIndex interface {
	UpsertFile(row FileRow) error
	DeleteFile(path string) error
	LookupName(name string) (string, error)
	GetFile(path string) (*FileRow, error)
	ListImages(folder string, limit int) ([]FileRow, error)
	AllFiles() (map[string]FileRow, error)
	Close() error
}

// Verify *DB satisfies FileIndex at compile time.
var _ FileIndex = (*DB)(nil)
