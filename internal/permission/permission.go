package permission

import (
	permissionDatamodel "github.com/frahmantamala/insight-pulse/internal/core/datamodel/permission"
)

// Pair is an ordered (from, to) department pair: from may survey to.
type Pair struct {
	FromDeptID int64 `json:"from_dept_id"`
	ToDeptID   int64 `json:"to_dept_id"`
}

func (p Pair) IsSelf() bool {
	return p.FromDeptID == p.ToDeptID
}

func ToDataModel(p Pair) *permissionDatamodel.Permission {
	return &permissionDatamodel.Permission{
		FromDeptID: p.FromDeptID,
		ToDeptID:   p.ToDeptID,
	}
}

func FromDataModel(p *permissionDatamodel.Permission) Pair {
	return Pair{
		FromDeptID: p.FromDeptID,
		ToDeptID:   p.ToDeptID,
	}
}

// ToDTOs converts pairs to their wire form.
func ToDTOs(pairs []Pair) []PairDTO {
	out := make([]PairDTO, len(pairs))
	for i, p := range pairs {
		from, to := p.FromDeptID, p.ToDeptID
		out[i] = PairDTO{FromDeptID: &from, ToDeptID: &to}
	}
	return out
}
