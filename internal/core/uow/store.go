package uow

import "context"

// Stats counts the row operations a store performed for one commit.
type Stats struct {
	Inserted    int `json:"inserted"`
	Updated     int `json:"updated"`
	SoftDeleted int `json:"softDeleted"`
	Removed     int `json:"removed"`
}

// Batch is what a store receives: the post-pipeline entries and the stamp
// the pipeline used.
type Batch struct {
	Entries []*Entry
	Stamp   Stamp
}

// Store applies a batch atomically: all entries or none.
type Store interface {
	Apply(ctx context.Context, batch Batch) (Stats, error)
}

// Tally computes the stats a successful apply of entries produces.
func Tally(entries []*Entry) Stats {
	var s Stats
	for _, e := range entries {
		switch {
		case e.Kind == Insert:
			s.Inserted++
		case e.Kind == Modify && e.SoftDeleted:
			s.SoftDeleted++
		case e.Kind == Modify:
			s.Updated++
		case e.Kind == Delete:
			s.Removed++
		}
	}
	return s
}
