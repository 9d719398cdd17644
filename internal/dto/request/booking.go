package request

type CheckInRequest struct {
	UserID string `json:"user_id" validate:"required,uuid4"`
}
