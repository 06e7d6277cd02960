package dto

type CreateTaskRequest struct {
	Title          string  `json:"title" validate:"required,max=200"`
	Description    string  `json:"description" validate:"max=2000"`
	EstimatedHours float64 `json:"estimatedHours" validate:"gte=0"`
}

type UpdateTaskStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending in_progress completed"`
}
