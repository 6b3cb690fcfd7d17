package pacing

import (
	"fmt"
	"time"

	"github.com/talentreach/forecast-cli/internal/model"
)

// bucketAcc accumulates unscaled, seasonality-adjusted historical values
// for one rollup bucket.
type bucketAcc struct {
	days    int
	present int
	cpas    float64
	starts  float64
	spend   float64
}

func (b *bucketAcc) add(md mappedDay) {
	b.days++
	if !md.present {
		return
	}
	b.present++
	b.cpas += md.adjCPAS
	b.starts += float64(md.stat.ApplyStarts)
	b.spend += md.stat.Spend
}

// finish averages the bucket and applies the same per-metric scaling
// factors as the daily series, keeping both views mutually consistent.
func (b *bucketAcc) finish(label string, startsScale, spendScale, cpasScale float64) model.PacingBucket {
	out := model.PacingBucket{Label: label, Days: b.days}
	if b.present == 0 {
		return out
	}
	n := float64(b.present)
	cpas := b.cpas / n * cpasScale
	out.CPAS = &cpas
	out.ApplyStarts = b.starts / n * startsScale
	out.Spend = b.spend / n * spendScale
	return out
}

// rollupWeekday buckets campaign days by day of week, Monday first.
func rollupWeekday(mapped []mappedDay, startsScale, spendScale, cpasScale float64) []model.PacingBucket {
	order := []time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
		time.Friday, time.Saturday, time.Sunday,
	}

	accs := make(map[time.Weekday]*bucketAcc, len(order))
	for _, wd := range order {
		accs[wd] = &bucketAcc{}
	}
	for _, md := range mapped {
		accs[md.date.Weekday()].add(md)
	}

	out := make([]model.PacingBucket, 0, len(order))
	for _, wd := range order {
		out = append(out, accs[wd].finish(wd.String(), startsScale, spendScale, cpasScale))
	}
	return out
}

// rollupWeekOfMonth buckets campaign days by week-of-month 1..4.
func rollupWeekOfMonth(mapped []mappedDay, startsScale, spendScale, cpasScale float64) []model.PacingBucket {
	var accs [4]bucketAcc
	for _, md := range mapped {
		accs[model.WeekOfMonth(md.date)-1].add(md)
	}

	out := make([]model.PacingBucket, 0, 4)
	for w := 0; w < 4; w++ {
		out = append(out, accs[w].finish(fmt.Sprintf("Week %d", w+1), startsScale, spendScale, cpasScale))
	}
	return out
}
