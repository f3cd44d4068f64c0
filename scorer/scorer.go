// Package scorer ranks listing records by how close their price is to the
// average price of the batch.
package scorer

import (
	"sort"

	"github.com/aluiziolira/go-scrape-listings/models"
)

// MaxScore is awarded to a record priced exactly at the batch average.
const MaxScore = 5.0

// Score returns a copy of records with Score filled in, ordered by score
// descending. The input slice is left untouched.
//
// A record priced at min scores MaxScore*min/avg below the average and
// MaxScore*avg/min above it. Records without a positive minimum price score 0
// and sort last; ties keep their input order.
func Score(records []models.Record) []models.Record {
	out := make([]models.Record, len(records))
	copy(out, records)

	avg, ok := averageMin(out)
	for i := range out {
		out[i].Score = 0
		if !ok || !qualifies(out[i]) {
			continue
		}
		min := float64(*out[i].Price.Min)
		if min < avg {
			out[i].Score = MaxScore * min / avg
		} else {
			out[i].Score = MaxScore * avg / min
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// qualifies treats a zero minimum as absent so neither branch divides by zero.
func qualifies(r models.Record) bool {
	return r.Price.Min != nil && *r.Price.Min > 0
}

func averageMin(records []models.Record) (float64, bool) {
	var sum float64
	count := 0
	for _, r := range records {
		if !qualifies(r) {
			continue
		}
		sum += float64(*r.Price.Min)
		count++
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}
