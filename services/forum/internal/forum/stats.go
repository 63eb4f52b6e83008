package forum

import "github.com/samber/lo"

// Stats is a summary of the forest for dashboards.
type Stats struct {
	Posts     int `json:"posts"`
	Comments  int `json:"comments"`
	MaxDepth  int `json:"max_depth"`
	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`
}

// ComputeStats counts every post and comment. A top-level comment has depth 1.
func ComputeStats(f Forest) Stats {
	st := Stats{
		Posts:     len(f),
		Upvotes:   lo.SumBy(f, func(p Post) int { return p.Upvotes }),
		Downvotes: lo.SumBy(f, func(p Post) int { return p.Downvotes }),
	}
	for _, p := range f {
		walk(p.Comments, 1, &st)
	}
	return st
}

func walk(nodes []Comment, depth int, st *Stats) {
	for _, c := range nodes {
		st.Comments++
		st.Upvotes += c.Upvotes
		st.Downvotes += c.Downvotes
		st.MaxDepth = max(st.MaxDepth, depth)
		walk(c.Replies, depth+1, st)
	}
}
