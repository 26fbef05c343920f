package clinic

import (
	"sort"
	"time"

	"github.com/Tanny2709/dental-clinic-dashboard-entnt/internal/model"
)

// Derived views are pure functions over a snapshot of the collections.
// They hold no state and are deterministic given (patients, incidents, now).

// Summary holds the KPI aggregates shown on the dashboard.
type Summary struct {
	TotalCount      int     `json:"totalCount"`
	CompletedCount  int     `json:"completedCount"`
	ScheduledCount  int     `json:"scheduledCount"`
	InProgressCount int     `json:"inProgressCount"`
	TotalRevenue    float64 `json:"totalRevenue"`
	CompletionRate  float64 `json:"completionRate"`
}

// KPISummary aggregates incident counts and revenue. Revenue sums cost over
// completed incidents, treating an absent cost as zero. CompletionRate is
// zero for an empty collection.
func KPISummary(incidents []model.Incident) Summary {
	var s Summary
	s.TotalCount = len(incidents)
	for _, in := range incidents {
		switch in.Status {
		case model.StatusCompleted:
			s.CompletedCount++
			if in.Cost != nil {
				s.TotalRevenue += *in.Cost
			}
		case model.StatusScheduled:
			s.ScheduledCount++
		case model.StatusInProgress:
			s.InProgressCount++
		}
	}
	if s.TotalCount > 0 {
		s.CompletionRate = float64(s.CompletedCount) / float64(s.TotalCount)
	}
	return s
}

// Upcoming returns incidents on or after now, ascending by appointment
// date. Ties keep insertion order. A limit <= 0 means unlimited.
func Upcoming(incidents []model.Incident, now time.Time, limit int) []model.Incident {
	var out []model.Incident
	for _, in := range incidents {
		if !in.AppointmentDate.Before(now) {
			out = append(out, in)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AppointmentDate.Before(out[j].AppointmentDate)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Past returns incidents before now, descending by appointment date.
func Past(incidents []model.Incident, now time.Time) []model.Incident {
	var out []model.Incident
	for _, in := range incidents {
		if in.AppointmentDate.Before(now) {
			out = append(out, in)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[j].AppointmentDate.Before(out[i].AppointmentDate)
	})
	return out
}

// PatientSpend pairs a patient with its appointment count and the total
// spent on completed treatments.
type PatientSpend struct {
	Patient       model.Patient `json:"patient"`
	IncidentCount int           `json:"incidentCount"`
	TotalSpent    float64       `json:"totalSpent"`
}

// RankPatientsBySpend ranks patients descending by total spend on completed
// incidents. Ties keep the original patient order. Truncated to topN when
// topN > 0.
func RankPatientsBySpend(patients []model.Patient, incidents []model.Incident, topN int) []PatientSpend {
	out := make([]PatientSpend, 0, len(patients))
	for _, p := range patients {
		ps := PatientSpend{Patient: p}
		for _, in := range incidents {
			if in.PatientID != p.ID {
				continue
			}
			ps.IncidentCount++
			if in.Status == model.StatusCompleted && in.Cost != nil {
				ps.TotalSpent += *in.Cost
			}
		}
		out = append(out, ps)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalSpent > out[j].TotalSpent
	})
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}

// DayKey formats a timestamp as its local calendar date. It is the grouping
// key used by CalendarBuckets and the basis of SameDay, so the two can
// never disagree.
func DayKey(t time.Time) string {
	return t.In(time.Local).Format(time.DateOnly)
}

// SameDay reports whether two timestamps fall on the same local calendar
// date, ignoring time of day.
func SameDay(a, b time.Time) bool {
	return DayKey(a) == DayKey(b)
}

// CalendarBuckets groups incidents by local calendar day within [from, to].
// Days with no incidents are absent from the map; the consumer supplies the
// full day grid.
func CalendarBuckets(incidents []model.Incident, from, to time.Time) map[string][]model.Incident {
	lo, hi := DayKey(from), DayKey(to)
	buckets := make(map[string][]model.Incident)
	for _, in := range incidents {
		k := DayKey(in.AppointmentDate)
		if k < lo || k > hi {
			continue
		}
		buckets[k] = append(buckets[k], in)
	}
	return buckets
}
