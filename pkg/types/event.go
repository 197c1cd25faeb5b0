package types

// ChangeEvent is the payload delivered to table-change observers. It
// summarizes the table at notification time without carrying validation
// state.
type ChangeEvent struct {
	RowCount    int
	Columns     []string
	Fingerprint string
}
