package movie

// Add appends w unless an entry with the same ID is already present.
// The input slice is never modified.
func Add(list []Watched, w Watched) []Watched {
	if _, ok := Find(list, w.ID); ok {
		return list
	}
	out := make([]Watched, 0, len(list)+1)
	out = append(out, list...)
	return append(out, w)
}

// Remove returns list without the entry whose ID is id.
func Remove(list []Watched, id string) []Watched {
	out := make([]Watched, 0, len(list))
	for _, w := range list {
		if w.ID != id {
			out = append(out, w)
		}
	}
	return out
}

// Find looks up an entry by ID.
func Find(list []Watched, id string) (Watched, bool) {
	for _, w := range list {
		if w.ID == id {
			return w, true
		}
	}
	return Watched{}, false
}

// Stats holds the watched list summary.
type Stats struct {
	Count         int     `json:"count"`
	AvgIMDbRating float64 `json:"avg_imdb_rating"`
	AvgUserRating float64 `json:"avg_user_rating"`
	AvgRuntime    float64 `json:"avg_runtime"`
}

// Summarize computes the mean ratings and runtime of list.
func Summarize(list []Watched) Stats {
	stats := Stats{Count: len(list)}
	if len(list) == 0 {
		return stats
	}

	n := float64(len(list))
	for _, w := range list {
		stats.AvgIMDbRating += w.IMDbRating / n
		stats.AvgUserRating += float64(w.UserRating) / n
		stats.AvgRuntime += float64(w.Runtime) / n
	}
	return stats
}
