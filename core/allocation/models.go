package allocation

import (
	"sort"

	"github.com/uniteach/monitoria/core"
	"github.com/uniteach/monitoria/core/period"
	"github.com/uniteach/monitoria/core/project"
)

// Adjustment is one proposed change to a project's allocated scholarships.
type Adjustment struct {
	ProjectID int
	Year      int
	Half      period.Half
	OldValue  int
	NewValue  int
}

// ProjectValue pairs a project with its requested new allocation.
type ProjectValue struct {
	ProjectID int `json:"project_id" validate:"required"`
	Value     int `json:"value" validate:"min=0"`
}

// BulkUpdate is the request shape of a bulk allocation edit.
type BulkUpdate struct {
	Values []ProjectValue `json:"values" validate:"required,min=1,dive"`
}

func (bu *BulkUpdate) Validate() error { return core.Validate.Struct(bu) }

// group is the set of adjustments that share an enrollment period and are
// validated (and locked) as one unit.
type group struct {
	year  int
	half  period.Half
	items []Adjustment
}

// removed/added follow the validation contract: the proposed total for the
// period is currentTotal - sum(old) + sum(new) over the group.
func (g group) removed() int {
	var n int
	for _, adj := range g.items {
		n += adj.OldValue
	}
	return n
}

func (g group) added() int {
	var n int
	for _, adj := range g.items {
		n += adj.NewValue
	}
	return n
}

// groupAdjustments buckets adjustments per (year, half), ordered by year then
// half so that concurrent bulk edits always take period locks in the same
// order.
func groupAdjustments(adjustments []Adjustment) []group {
	byPeriod := make(map[[2]int]*group)
	for _, adj := range adjustments {
		key := [2]int{adj.Year, adj.Half.Ordinal()}
		g, ok := byPeriod[key]
		if !ok {
			g = &group{year: adj.Year, half: adj.Half}
			byPeriod[key] = g
		}
		g.items = append(g.items, adj)
	}

	groups := make([]group, 0, len(byPeriod))
	for _, g := range byPeriod {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].year != groups[j].year {
			return groups[i].year < groups[j].year
		}
		return groups[i].half.Ordinal() < groups[j].half.Ordinal()
	})
	return groups
}

// Summary aggregates a period's approved projects for the allocation screen.
type Summary struct {
	TotalProjects              int                 `json:"total_projects"`
	TotalRequestedScholarships int                 `json:"total_requested_scholarships"`
	TotalAllocatedScholarships int                 `json:"total_allocated_scholarships"`
	TotalRequestedVolunteers   int                 `json:"total_requested_volunteers"`
	Departments                []DepartmentSummary `json:"departments"`
}

type DepartmentSummary struct {
	Department            project.Department `json:"department"`
	Projects              int                `json:"projects"`
	RequestedScholarships int                `json:"requested_scholarships"`
	AllocatedScholarships int                `json:"allocated_scholarships"`
}

// ApprovedProject is a project row as presented on the allocation screen.
type ApprovedProject struct {
	Project    project.Project    `json:"project"`
	Department project.Department `json:"department"`
}
