package listing

// Dedupe collapses records sharing an ApplyURL. The first occurrence wins and
// input order is preserved.
func Dedupe(records []Record) []Record {
	out := make([]Record, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for _, rec := range records {
		if _, ok := seen[rec.ApplyURL]; ok {
			continue
		}
		seen[rec.ApplyURL] = struct{}{}
		out = append(out, rec)
	}
	return out
}

// Cap truncates records to at most n entries. A non-positive n yields an empty slice.
func Cap(records []Record, n int) []Record {
	if n <= 0 {
		return []Record{}
	}
	if len(records) <= n {
		return records
	}
	return records[:n]
}
