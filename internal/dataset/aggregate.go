package dataset

import (
	"sort"
	"time"

	"github.com/rotisserie/eris"

	"github.com/talentreach/forecast-cli/internal/model"
)

// Reference is the derived read-only state computed once from the
// historical dataset. Safe for unsynchronized concurrent reads.
type Reference struct {
	daily    []model.DailyStat
	byDay    map[int]model.DailyStat // day-of-month within the reference month
	weekly   [4]model.WeeklyAggregate
	jobs     []model.JobStat
	meanCPAS float64
	refMonth time.Month
	refYear  int
}

// Build derives all aggregates from raw records.
func Build(records []model.HistoricalRecord) (*Reference, error) {
	if len(records) == 0 {
		return nil, eris.New("dataset: no records")
	}

	daily := aggregateDaily(records)
	if len(daily) == 0 {
		return nil, eris.New("dataset: no days with conversions")
	}

	ref := &Reference{daily: daily}
	ref.refMonth, ref.refYear = referenceMonth(daily)

	ref.byDay = make(map[int]model.DailyStat)
	for _, d := range daily {
		if d.Date.Month() == ref.refMonth && d.Date.Year() == ref.refYear {
			ref.byDay[d.Date.Day()] = d
		}
	}

	ref.weekly, ref.meanCPAS = aggregateWeekly(records)
	ref.jobs = aggregateJobs(records)

	return ref, nil
}

// aggregateDaily sums spend and conversions per calendar date, keeping
// only days with at least one conversion.
func aggregateDaily(records []model.HistoricalRecord) []model.DailyStat {
	type acc struct {
		spend  float64
		starts int
	}
	byDate := make(map[time.Time]*acc)
	for _, r := range records {
		day := r.Date.Truncate(24 * time.Hour)
		a, ok := byDate[day]
		if !ok {
			a = &acc{}
			byDate[day] = a
		}
		a.spend += r.Spend
		a.starts += r.ApplyStarts
	}

	daily := make([]model.DailyStat, 0, len(byDate))
	for date, a := range byDate {
		if a.starts <= 0 {
			continue
		}
		daily = append(daily, model.DailyStat{
			Date:        date,
			Spend:       a.spend,
			ApplyStarts: a.starts,
			CPAS:        a.spend / float64(a.starts),
		})
	}
	sort.Slice(daily, func(i, j int) bool { return daily[i].Date.Before(daily[j].Date) })
	return daily
}

// aggregateWeekly buckets records by week-of-month. A bucket's CPAS uses
// only rows with positive spend and conversions; rows lacking spend still
// count toward the conversion totals. Empty buckets fall back to the mean
// CPAS of populated buckets so no zero division propagates downstream.
func aggregateWeekly(records []model.HistoricalRecord) ([4]model.WeeklyAggregate, float64) {
	var cpasSpend, cpasStarts [4]float64
	var totalSpend [4]float64
	var totalStarts [4]int

	for _, r := range records {
		w := model.WeekOfMonth(r.Date) - 1
		if r.ApplyStarts > 0 {
			totalStarts[w] += r.ApplyStarts
			totalSpend[w] += r.Spend
			if r.Spend > 0 {
				cpasSpend[w] += r.Spend
				cpasStarts[w] += float64(r.ApplyStarts)
			}
		}
	}

	// Dataset-wide mean CPAS over populated buckets.
	var sum float64
	var populated int
	for w := 0; w < 4; w++ {
		if cpasStarts[w] > 0 {
			sum += cpasSpend[w] / cpasStarts[w]
			populated++
		}
	}
	mean := 0.0
	if populated > 0 {
		mean = sum / float64(populated)
	}

	grandStarts := 0
	for w := 0; w < 4; w++ {
		grandStarts += totalStarts[w]
	}

	var weekly [4]model.WeeklyAggregate
	for w := 0; w < 4; w++ {
		agg := model.WeeklyAggregate{
			WeekIndex:        w + 1,
			TotalSpend:       totalSpend[w],
			TotalApplyStarts: totalStarts[w],
		}
		if cpasStarts[w] > 0 {
			agg.CPAS = cpasSpend[w] / cpasStarts[w]
		} else {
			agg.CPAS = mean
		}
		if grandStarts > 0 {
			agg.ApplyShare = float64(totalStarts[w]) / float64(grandStarts)
		}
		weekly[w] = agg
	}
	return weekly, mean
}

// aggregateJobs sums performance per job reference for quality analysis.
// Jobs without conversions are dropped.
func aggregateJobs(records []model.HistoricalRecord) []model.JobStat {
	type acc struct {
		spend  float64
		starts int
	}
	byJob := make(map[string]*acc)
	for _, r := range records {
		if r.JobRef == "" {
			continue
		}
		a, ok := byJob[r.JobRef]
		if !ok {
			a = &acc{}
			byJob[r.JobRef] = a
		}
		a.spend += r.Spend
		a.starts += r.ApplyStarts
	}

	jobs := make([]model.JobStat, 0, len(byJob))
	for ref, a := range byJob {
		if a.starts <= 0 {
			continue
		}
		jobs = append(jobs, model.JobStat{
			JobRef:      ref,
			Spend:       a.spend,
			ApplyStarts: a.starts,
			CPAS:        a.spend / float64(a.starts),
		})
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].JobRef < jobs[j].JobRef })
	return jobs
}

// referenceMonth picks the month-year with the most valid days; it anchors
// the day-of-month mapping in the pacing generator.
func referenceMonth(daily []model.DailyStat) (time.Month, int) {
	type my struct {
		m time.Month
		y int
	}
	counts := make(map[my]int)
	for _, d := range daily {
		counts[my{d.Date.Month(), d.Date.Year()}]++
	}
	// Equal density resolves to the later month, the freshest pattern.
	var best my
	bestN := -1
	for k, n := range counts {
		if n > bestN || (n == bestN && (k.y > best.y || (k.y == best.y && k.m > best.m))) {
			best, bestN = k, n
		}
	}
	return best.m, best.y
}

// Daily returns the date-ordered valid daily series.
func (r *Reference) Daily() []model.DailyStat { return r.daily }

// Weekly returns the four week-of-month buckets.
func (r *Reference) Weekly() [4]model.WeeklyAggregate { return r.weekly }

// Jobs returns per-job aggregates for datasets that carry job references.
func (r *Reference) Jobs() []model.JobStat { return r.jobs }

// MeanCPAS returns the dataset-wide mean CPAS across populated buckets.
func (r *Reference) MeanCPAS() float64 { return r.meanCPAS }

// ReferenceMonth returns the month the pacing day-mapping anchors to.
func (r *Reference) ReferenceMonth() time.Month { return r.refMonth }

// ReferenceYear returns the year of the reference month.
func (r *Reference) ReferenceYear() int { return r.refYear }

// DayStat looks up the reference-month stat for a day-of-month. Days past
// the last populated day clamp onto it; gaps inside the populated range
// stay absent so callers can apply their own priors.
func (r *Reference) DayStat(day int) (model.DailyStat, bool) {
	if s, ok := r.byDay[day]; ok {
		return s, true
	}
	if last := r.LastDay(); last > 0 && day > last {
		return r.byDay[last], true
	}
	return model.DailyStat{}, false
}

// LastDay returns the last populated day-of-month in the reference month.
func (r *Reference) LastDay() int {
	last := 0
	for d := range r.byDay {
		if d > last {
			last = d
		}
	}
	return last
}
