package store

// Record holds the ordered, non-empty list of values stored under a Key.
// Values are never shuffled or reordered; callers see them in insertion
// order, which the resolver emits as parallel answer RRs.
type Record struct {
	Key    Key
	Values []string
}

// clone returns a deep copy of the record, used both when a record is
// inserted (so the store never aliases caller-owned slices) and when a
// snapshot is handed to a reader (so later mutations can't be observed
// through an old reference).
func (r Record) clone() Record {
	values := make([]string, len(r.Values))
	copy(values, r.Values)
	return Record{Key: r.Key, Values: values}
}
