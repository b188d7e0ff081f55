package fileservice

// NOP is a Service that persists nothing. Get always reports
// ErrNotFound.
type NOP struct{}

// Put discards data.
func (NOP) Put(RecordType, string, []byte) error { return nil }

// Get reports ErrNotFound.
func (NOP) Get(RecordType, string) ([]byte, error) { return nil, ErrNotFound }

// Delete does nothing.
func (NOP) Delete(RecordType, string) error { return nil }

// ForEach visits nothing.
func (NOP) ForEach(RecordType, func(string, []byte) error) error { return nil }

// Replace discards records.
func (NOP) Replace(RecordType, map[string][]byte) error { return nil }

var (
	_ Service = NOP{}
	_ Service = (*Store)(nil)
)
