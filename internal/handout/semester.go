package handout

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultSemesterCount is how many semesters a multi-result search lists.
const DefaultSemesterCount = 4

// Semester identifies one academic term by the suffix used in file names.
type Semester struct {
	// Suffix is appended to the search term, e.g. "SEM1 (2020-21)".
	Suffix string `json:"suffix"`
	// Label is shown to users, e.g. "SEM I (2020-21)".
	Label string `json:"label"`
}

// Header is the line that introduces the semester's listing.
func (s Semester) Header() string {
	return s.Label + " :"
}

// LegacySemesters is the list the bot shipped with in the 2020-21 academic year.
var LegacySemesters = []Semester{
	{Suffix: "SEM1 (2020-21)", Label: "SEM I (2020-21)"},
	{Suffix: "SEM2 (2019-20)", Label: "SEM II (2019-20)"},
	{Suffix: "SEM1 (2019-20)", Label: "SEM I (2019-20)"},
	{Suffix: "SEM2 (2018-19)", Label: "SEM II (2018-19)"},
}

var semesterPattern = regexp.MustCompile(`^SEM\s*([12])\s*\((\d{4})-(\d{2})\)$`)

// ParseSemester turns a file-name suffix into a Semester. The suffix is kept
// as given, apart from surrounding whitespace, since it is searched for
// literally. Suffixes following the "SEM<n> (<yyyy>-<yy>)" convention get a
// roman-numeral label, anything else doubles as its own label.
func ParseSemester(suffix string) Semester {
	suffix = strings.TrimSpace(suffix)
	m := semesterPattern.FindStringSubmatch(suffix)
	if m == nil {
		return Semester{Suffix: suffix, Label: suffix}
	}
	term, _ := strconv.Atoi(m[1])
	return Semester{Suffix: suffix, Label: newSemester(term, m[2], m[3]).Label}
}

// ParseSemesters parses a list of suffixes, skipping blank entries.
func ParseSemesters(suffixes []string) []Semester {
	semesters := make([]Semester, 0, len(suffixes))
	for _, s := range suffixes {
		if strings.TrimSpace(s) == "" {
			continue
		}
		semesters = append(semesters, ParseSemester(s))
	}
	return semesters
}

// RecentSemesters lists count semesters, newest first, ending with the one
// running at now. The academic year starts in July: July to December is the
// first semester of Y-(Y+1), January to June the second semester of (Y-1)-Y.
func RecentSemesters(now time.Time, count int) []Semester {
	if count <= 0 {
		return nil
	}

	term, startYear := 1, now.Year()
	if now.Month() < time.July {
		term, startYear = 2, now.Year()-1
	}

	semesters := make([]Semester, 0, count)
	for range count {
		semesters = append(semesters, newSemester(term,
			strconv.Itoa(startYear),
			fmt.Sprintf("%02d", (startYear+1)%100)))
		if term == 2 {
			term = 1
		} else {
			term, startYear = 2, startYear-1
		}
	}
	return semesters
}

func newSemester(term int, startYear, endYear string) Semester {
	numeral := "I"
	if term == 2 {
		numeral = "II"
	}
	years := fmt.Sprintf("(%s-%s)", startYear, endYear)
	return Semester{
		Suffix: fmt.Sprintf("SEM%d %s", term, years),
		Label:  fmt.Sprintf("SEM %s %s", numeral, years),
	}
}
