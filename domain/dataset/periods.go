package dataset

import "fmt"

// PeriodStatus annotates whether all datasets declare the same time period.
// It never blocks computation; exporters attach it to labels.
type PeriodStatus struct {
	Consistent bool
	StartYear  int
	EndYear    int
}

// Label renders the annotation for plot/export titles.
func (s PeriodStatus) Label() string {
	if !s.Consistent {
		return "inconsistent periods"
	}
	return fmt.Sprintf("%d-%d", s.StartYear, s.EndYear)
}

// CheckPeriods compares declared periods across datasets. Consistent iff every
// descriptor shares identical (start_year, end_year). Pure annotation.
func CheckPeriods(descriptors []Descriptor) PeriodStatus {
	if len(descriptors) == 0 {
		return PeriodStatus{}
	}
	first := descriptors[0]
	for _, d := range descriptors[1:] {
		if d.StartYear != first.StartYear || d.EndYear != first.EndYear {
			return PeriodStatus{Consistent: false}
		}
	}
	return PeriodStatus{
		Consistent: true,
		StartYear:  first.StartYear,
		EndYear:    first.EndYear,
	}
}
