package cube

// Access marks whether a handle may mutate remote state. It is decided once,
// when the handle is constructed, and carried immutably. A ReadWrite handle
// can always be downgraded to ReadOnly; the reverse conversion does not
// exist.
type Access int

const (
	// ReadOnly handles can enumerate, search and download.
	ReadOnly Access = iota

	// ReadWrite handles can additionally upload, create plugin instances,
	// and modify resources they own.
	ReadWrite
)

// String implements fmt.Stringer.
func (a Access) String() string {
	if a == ReadWrite {
		return "read-write"
	}

	return "read-only"
}

// CanWrite reports whether the access level permits mutation.
func (a Access) CanWrite() bool {
	return a == ReadWrite
}
