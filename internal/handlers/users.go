package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gatherly/gatherly-api/internal/directory"
	"github.com/gatherly/gatherly-api/internal/models"
	"github.com/gatherly/gatherly-api/internal/session"
)

type UserHandler struct {
	directory *directory.Directory
	sessions  *session.Manager
}

func NewUserHandler(directory *directory.Directory, sessions *session.Manager) *UserHandler {
	return &UserHandler{directory: directory, sessions: sessions}
}

type CreateUserRequest struct {
	Body struct {
		FirstName    string `json:"first_name" doc:"Given name" required:"true"`
		LastName     string `json:"last_name" doc:"Family name" required:"true"`
		Email        string `json:"email" doc:"Must be unique across all users, case-insensitive" required:"true"`
		Phone        string `json:"phone" doc:"Contact phone number" required:"true"`
		Organization string `json:"organization,omitempty" doc:"Optional organization or company"`
	}
}

type CreateUserResponse struct {
	Body models.User
}

func (h *UserHandler) HandleCreateUser(ctx context.Context, input *CreateUserRequest) (*CreateUserResponse, error) {
	user, err := h.directory.Register(
		input.Body.FirstName,
		input.Body.LastName,
		input.Body.Email,
		input.Body.Phone,
		input.Body.Organization,
	)
	switch {
	case errors.Is(err, models.ErrDuplicateEmail):
		return nil, huma.Error409Conflict("Email is already registered")
	case errors.Is(err, models.ErrInvalidInput):
		return nil, huma.Error400BadRequest("First name, last name, email and phone are required")
	case err != nil:
		return nil, huma.Error500InternalServerError("Failed to create user: " + err.Error())
	}
	return &CreateUserResponse{Body: user}, nil
}

type ListUsersResponse struct {
	Body []models.User
}

// HandleListUsers returns the active users. Deactivated users stay
// reachable by id but are left out of the listing.
func (h *UserHandler) HandleListUsers(ctx context.Context, input *struct{}) (*ListUsersResponse, error) {
	return &ListUsersResponse{Body: h.directory.ListActive()}, nil
}

type GetUserRequest struct {
	ID int64 `path:"id" doc:"User id"`
}

type GetUserResponse struct {
	Body models.User
}

func (h *UserHandler) HandleGetUser(ctx context.Context, input *GetUserRequest) (*GetUserResponse, error) {
	user, ok := h.directory.Get(input.ID)
	if !ok {
		return nil, huma.Error404NotFound("User not found")
	}
	return &GetUserResponse{Body: user}, nil
}

type UpdateUserRequest struct {
	SessionInput
	ID   int64 `path:"id" doc:"User id"`
	Body struct {
		FirstName    string `json:"first_name" required:"true"`
		LastName     string `json:"last_name" required:"true"`
		Email        string `json:"email" required:"true"`
		Phone        string `json:"phone" required:"true"`
		Organization string `json:"organization,omitempty"`
	}
}

type UpdateUserResponse struct {
	Body models.User
}

func (h *UserHandler) HandleUpdateUser(ctx context.Context, input *UpdateUserRequest) (*UpdateUserResponse, error) {
	if _, _, err := requireLogin(h.sessions, input.SessionInput); err != nil {
		return nil, err
	}

	err := h.directory.Update(models.User{
		ID:           input.ID,
		FirstName:    input.Body.FirstName,
		LastName:     input.Body.LastName,
		Email:        input.Body.Email,
		Phone:        input.Body.Phone,
		Organization: input.Body.Organization,
	})
	switch {
	case errors.Is(err, models.ErrNotFound):
		return nil, huma.Error404NotFound("User not found")
	case errors.Is(err, models.ErrInvalidInput):
		return nil, huma.Error400BadRequest("First name, last name, email and phone are required")
	case err != nil:
		return nil, huma.Error500InternalServerError("Failed to update user: " + err.Error())
	}

	user, _ := h.directory.Get(input.ID)
	return &UpdateUserResponse{Body: user}, nil
}
