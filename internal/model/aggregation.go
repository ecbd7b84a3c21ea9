package model

import (
	"sort"
	"strings"
)

// PeriodBucket collects the students missing one teacher's period on one date.
type PeriodBucket struct {
	// Mark and Time come from the entry that created the bucket.
	Mark     Mark
	Time     string
	Students []string // "Name_ID" keys
}

// Has reports whether key is already listed.
func (b *PeriodBucket) Has(key string) bool {
	for _, s := range b.Students {
		if s == key {
			return true
		}
	}
	return false
}

type (
	// PeriodBuckets is keyed by period code.
	PeriodBuckets map[PeriodCode]*PeriodBucket
	// DateBuckets is keyed by mm/dd/yy date string.
	DateBuckets map[string]PeriodBuckets
	// Aggregation is keyed by teacher email.
	Aggregation map[string]DateBuckets
)

// Add appends a student key to the (teacher, date, period) bucket, creating
// it with the entry's mark and time if needed. Returns false when the student
// was already listed there.
func (a Aggregation) Add(teacher, date string, entry PeriodEntry, key string) bool {
	dates, ok := a[teacher]
	if !ok {
		dates = make(DateBuckets)
		a[teacher] = dates
	}
	periods, ok := dates[date]
	if !ok {
		periods = make(PeriodBuckets)
		dates[date] = periods
	}
	bucket, ok := periods[entry.Period]
	if !ok {
		bucket = &PeriodBucket{Mark: entry.Mark, Time: entry.Time}
		periods[entry.Period] = bucket
	}
	if bucket.Has(key) {
		return false
	}
	bucket.Students = append(bucket.Students, key)
	return true
}

// StudentRef is one listed student, split back out of its "Name_ID" key.
type StudentRef struct {
	Name string
	ID   string
}

// SplitKey splits "Name_ID" at the last separator.
func SplitKey(key string) StudentRef {
	i := strings.LastIndex(key, KeySeparator)
	if i < 0 {
		return StudentRef{Name: key}
	}
	return StudentRef{Name: key[:i], ID: key[i+len(KeySeparator):]}
}

// PeriodAbsences is the sorted view of one PeriodBucket.
type PeriodAbsences struct {
	Period   PeriodCode
	Mark     Mark
	Time     string
	Students []StudentRef
}

// Annotation renders the leave/return note, e.g. "leaving at 9:00am".
func (p PeriodAbsences) Annotation() string {
	return PeriodEntry{Period: p.Period, Mark: p.Mark, Time: p.Time}.Annotation()
}

// DateAbsences is the sorted view of one date.
type DateAbsences struct {
	Date    string
	Periods []PeriodAbsences
}

// TeacherAbsences is everything one teacher is emailed about.
type TeacherAbsences struct {
	Email string
	Dates []DateAbsences
}

// Teachers returns the aggregation as sorted slices: teachers ascending,
// dates ascending as mm/dd/yy strings, periods ascending by code, students
// ascending by "Name_ID". The date order is lexicographic, so dates spanning
// a year boundary sort by month first.
func (a Aggregation) Teachers() []TeacherAbsences {
	out := make([]TeacherAbsences, 0, len(a))
	for _, email := range sortedKeys(a) {
		dates := a[email]
		ta := TeacherAbsences{Email: email}
		for _, date := range sortedKeys(dates) {
			periods := dates[date]
			da := DateAbsences{Date: date}
			codes := make([]string, 0, len(periods))
			for p := range periods {
				codes = append(codes, string(p))
			}
			sort.Strings(codes)
			for _, c := range codes {
				b := periods[PeriodCode(c)]
				keys := append([]string(nil), b.Students...)
				sort.Strings(keys)
				refs := make([]StudentRef, 0, len(keys))
				for _, k := range keys {
					refs = append(refs, SplitKey(k))
				}
				da.Periods = append(da.Periods, PeriodAbsences{
					Period:   PeriodCode(c),
					Mark:     b.Mark,
					Time:     b.Time,
					Students: refs,
				})
			}
			ta.Dates = append(ta.Dates, da)
		}
		out = append(out, ta)
	}
	return out
}

// StudentPeriods counts every listed student across all buckets.
func (a Aggregation) StudentPeriods() int {
	n := 0
	for _, dates := range a {
		for _, periods := range dates {
			for _, b := range periods {
				n += len(b.Students)
			}
		}
	}
	return n
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AggregateResult is the aggregator output plus the run counters.
type AggregateResult struct {
	Aggregation   Aggregation
	NotFound      []string
	Students      int
	PeriodsMissed int
}

// Emails is the number of teachers that will be emailed.
func (r AggregateResult) Emails() int { return len(r.Aggregation) }

// StudentPeriods is the total number of student-period absences.
func (r AggregateResult) StudentPeriods() int { return r.Aggregation.StudentPeriods() }

// Ratio is student-periods per period missed; zero when nothing was missed.
func (r AggregateResult) Ratio() float64 {
	if r.PeriodsMissed == 0 {
		return 0
	}
	return float64(r.StudentPeriods()) / float64(r.PeriodsMissed)
}
