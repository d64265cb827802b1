package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// PROGRAM YEAR - The funding cycle cumulative caps are tracked against
// =============================================================================

// ProgramYear is the annual funding cycle, e.g. "2024-2025".
// Program-year limits and cumulative awarded totals are always relative to one
// program year, never to a calendar year.
//
// Examples:
//   - 2024-2025: Aug 1 2024 - Jul 31 2025
type ProgramYear struct {
	Name  string
	Start Date
	End   Date
}

// Contains returns true if the date is within the program year [Start, End]
func (p ProgramYear) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

func (p ProgramYear) String() string {
	return p.Name + " [" + p.Start.String() + ", " + p.End.String() + "]"
}

// programYearStartMonth is when a program year begins when no explicit dates
// are configured.
const programYearStartMonth = time.August

// ParseProgramYear builds the default Aug 1 - Jul 31 program year from a name
// of the form "YYYY-YYYY" where the second year follows the first.
func ParseProgramYear(name string) (ProgramYear, error) {
	parts := strings.Split(name, "-")
	if len(parts) != 2 {
		return ProgramYear{}, fmt.Errorf("%w: program year %q must look like 2024-2025", ErrInvalidInput, name)
	}
	first, err1 := strconv.Atoi(parts[0])
	second, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || second != first+1 {
		return ProgramYear{}, fmt.Errorf("%w: program year %q must look like 2024-2025", ErrInvalidInput, name)
	}
	start := NewDate(first, programYearStartMonth, 1)
	return ProgramYear{
		Name:  name,
		Start: start,
		End:   start.AddYears(1).AddDays(-1),
	}, nil
}
