// File: internal/dto/user_response.go
package dto

import (
	"time"

	"accounts-api/internal/model"
)

// swagger:model dto.UserResponse
type UserResponse struct {
	ID         int       `json:"id" example:"1"`
	Email      string    `json:"email" example:"alice@example.com"`
	IsAdmin    bool      `json:"is_admin" example:"false"`
	IsVerified bool      `json:"is_verified" example:"false"`
	CreatedAt  time.Time `json:"created_at" example:"2025-05-01T15:04:05Z07:00"`
}

// NewUserResponse 由 model.User 組裝回應，不含密碼哈希
func NewUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		IsAdmin:    u.IsAdmin,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
	}
}

// swagger:model dto.MessageResponse
type MessageResponse struct {
	Message string `json:"message" example:"verification mail sent"`
}
