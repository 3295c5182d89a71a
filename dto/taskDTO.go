package dto

type CreateTaskRequest struct {
	Title  string `json:"title" binding:"required,max=2000"`
	Status string `json:"status"`
}

// UpdateTaskRequest uses pointers so an omitted field stays distinct from an
// empty one.
type UpdateTaskRequest struct {
	Title  *string `json:"title" binding:"omitempty,max=2000"`
	Status *string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
