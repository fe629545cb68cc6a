package department

import (
	"strings"
	"time"

	departmentDatamodel "github.com/frahmantamala/insight-pulse/internal/core/datamodel/department"
)

type Department struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"-"`
}

func (d *Department) ToResponse() DepartmentResponse {
	return DepartmentResponse{
		ID:   d.ID,
		Name: d.Name,
	}
}

func NewDepartment(name string) *Department {
	return &Department{
		Name:      strings.TrimSpace(name),
		CreatedAt: time.Now(),
	}
}

// IDs keeps the input order.
func IDs(departments []Department) []int64 {
	ids := make([]int64, len(departments))
	for i, d := range departments {
		ids[i] = d.ID
	}
	return ids
}

// FindByName matches case-insensitively, the way department names are typed
// at the console.
func FindByName(departments []Department, name string) (Department, bool) {
	name = strings.TrimSpace(name)
	for _, d := range departments {
		if strings.EqualFold(d.Name, name) {
			return d, true
		}
	}
	return Department{}, false
}

func NameMap(departments []Department) map[int64]string {
	m := make(map[int64]string, len(departments))
	for _, d := range departments {
		m[d.ID] = d.Name
	}
	return m
}

func ToDataModel(d *Department) *departmentDatamodel.Department {
	return &departmentDatamodel.Department{
		ID:        d.ID,
		Name:      d.Name,
		CreatedAt: d.CreatedAt,
	}
}

func FromDataModel(d *departmentDatamodel.Department) *Department {
	return &Department{
		ID:        d.ID,
		Name:      d.Name,
		CreatedAt: d.CreatedAt,
	}
}
