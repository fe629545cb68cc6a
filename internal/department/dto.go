package department

type DepartmentResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type CreateDepartmentDTO struct {
	Name string `json:"name" validate:"notblank,max=255"`
}
