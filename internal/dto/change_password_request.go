// File: internal/dto/update_my_password_request.go
package dto

// ChangePasswordRequest 變更自己的密碼
// swagger:model dto.ChangePasswordRequest
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" form:"current_password" validate:"required" example:"OldSecret123"`
	NewPassword     string `json:"new_password" form:"new_password" validate:"required,goodpassword" example:"NewSecret456"`
}
