// File: internal/dto/update_user_request.go
package dto

// swagger:model dto.UpdateUserRequest
type UpdateUserRequest struct {
	Email   string `form:"email" json:"email" validate:"required,email" example:"alice@example.com"`
	IsAdmin bool   `form:"is_admin" json:"is_admin" example:"false"`
}

// swagger:model dto.CreateUserRequest
type CreateUserRequest struct {
	Email    string `form:"email" json:"email" validate:"required,email" example:"alice@example.com"`
	Password string `form:"password" json:"password" validate:"required,goodpassword" example:"Secret123"`
	IsAdmin  bool   `form:"is_admin" json:"is_admin" example:"false"`
}
