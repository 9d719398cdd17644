package request

type CreateTemplateRequest struct {
	Title    string `json:"title" validate:"required,min=1,max=100"`
	Capacity int    `json:"capacity" validate:"required,gt=0"`
}

type CreateSessionRequest struct {
	ClassID          string `json:"class_id" validate:"required,uuid4"`
	StartsAt         string `json:"starts_at" validate:"required"`
	EndsAt           string `json:"ends_at" validate:"required"`
	CapacityOverride *int   `json:"capacity_override,omitempty" validate:"omitempty,gt=0"`
}
