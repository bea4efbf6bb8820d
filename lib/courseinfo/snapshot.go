package courseinfo

// Snapshot is the full flattened set of items observed in one fetch cycle.
type Snapshot struct {
	Items []Item
}

func NewSnapshot(courses []Course) Snapshot {
	var items []Item
	for _, c := range courses {
		items = append(items, c.Items()...)
	}
	return Snapshot{Items: items}
}

func (s Snapshot) Len() int {
	return len(s.Items)
}

func (s Snapshot) keys() map[Key]struct{} {
	keys := make(map[Key]struct{}, len(s.Items))
	for _, item := range s.Items {
		keys[item.Key()] = struct{}{}
	}
	return keys
}

// Diff returns the items of current whose natural key is absent from
// previous. A nil previous means there was no prior run, so every current
// item is new. Items sharing a natural key are reported at most once.
func Diff(previous *Snapshot, current Snapshot) []Item {
	if previous == nil {
		return append([]Item(nil), current.Items...)
	}

	seen := previous.keys()
	var result []Item
	for _, item := range current.Items {
		key := item.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, item)
	}
	return result
}
