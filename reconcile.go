package statelet

// Id-keyed list reconciliation. All three operations return a fresh slice
// and leave the source list untouched, so previously published list values
// stay valid for subscribers still holding them.

// UpsertByID merges item into list by id.
//
// If an entry with the same id exists it is replaced in place, preserving
// list order; otherwise item is appended.
func UpsertByID[T Entity](list []T, item T) []T {
	merged := make([]T, len(list))
	copy(merged, list)

	for i, existing := range merged {
		if existing.EntityID() == item.EntityID() {
			merged[i] = item
			return merged
		}
	}
	return append(merged, item)
}

// UpsertManyByID merges each element of items into list, in items order.
// Later elements win when the batch contains duplicate ids.
func UpsertManyByID[T Entity](list []T, items []T) []T {
	merged := make([]T, len(list))
	copy(merged, list)

	for _, item := range items {
		merged = UpsertByID(merged, item)
	}
	return merged
}

// RemoveByID returns list without the entry whose id equals id.
//
// Ids are unique within a list, so at most one entry is removed. Removing
// an absent id is a no-op that still returns a shallow copy.
func RemoveByID[T Entity](list []T, id uint64) []T {
	remaining := make([]T, 0, len(list))
	for _, item := range list {
		if item.EntityID() == id {
			continue
		}
		remaining = append(remaining, item)
	}
	return remaining
}
