package httpapi

import (
	"time"

	"github.com/dmitrijs2005/fintrack/internal/server/models"
)

type createUserRequest struct {
	FirstName   string `json:"firstName" validate:"required"`
	LastName    string `json:"lastName" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phoneNumber" validate:"required,e164"`
	Password    string `json:"password" validate:"required,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Password string `json:"password" validate:"required,max=72"`
}

type updatePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required,min=8,max=15"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=15"`
}

type updateUserRequest struct {
	FirstName   *string `json:"firstName" validate:"omitnil,min=1"`
	LastName    *string `json:"lastName" validate:"omitnil,min=1"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitnil,e164"`
}

type listUsersQuery struct {
	Page    int `json:"page" validate:"gte=0"`
	PerPage int `json:"perPage" validate:"gte=0,lte=100"`
}

// userResponse is the public view of a user. Password and reset fields
// are never serialised.
type userResponse struct {
	ID          string    `json:"id"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber"`
	IsEnabled   bool      `json:"isEnabled"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		IsEnabled:   u.IsEnabled,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

type idEmail struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"perPage"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

type usersPage struct {
	Pagination pagination     `json:"pagination"`
	Users      []userResponse `json:"users"`
}
