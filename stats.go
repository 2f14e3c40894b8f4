package indexedstore

// Stats is a point-in-time summary of a store's size.
type Stats struct {
	// Records is the number of records in the primary map.
	Records int

	// Indexes holds the statistics of each declared index key.
	Indexes map[string]IndexStats
}

// IndexStats summarizes one secondary index.
type IndexStats struct {
	// Buckets is the number of distinct values the index has seen.
	Buckets int

	// EmptyBuckets is the number of buckets whose records have all been removed or moved away.
	// Emptied buckets are not pruned.
	EmptyBuckets int

	// Entries is the total number of primary keys filed across all buckets.
	Entries int
}

// Stats returns the current size of the primary map and the secondary indices.
func (c *core[PK, R]) Stats() Stats {
	st := Stats{
		Records: len(c.object),
		Indexes: make(map[string]IndexStats, len(c.ordered)),
	}
	for _, idx := range c.ordered {
		var is IndexStats
		for _, b := range idx.buckets {
			is.Buckets++
			if b.Len() == 0 {
				is.EmptyBuckets++
			}
			is.Entries += b.Len()
		}
		st.Indexes[idx.field.Name()] = is
	}
	return st
}
