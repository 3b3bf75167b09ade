package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/r6tracker/internal/handlers/render"
	"github.com/nkiryanov/r6tracker/internal/handlers/userctx"
	"github.com/nkiryanov/r6tracker/internal/logger"
	"github.com/nkiryanov/r6tracker/internal/models"
)

const timeFormat = time.RFC3339

type userService interface {
	UpdateProfile(ctx context.Context, userID uuid.UUID, update models.ProfileUpdate) (models.User, error)
}

type userResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  *string   `json:"full_name"`
	Bio       *string   `json:"bio"`
	Image     *string   `json:"image"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newUserResponse(u models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		Bio:       u.Bio,
		Image:     u.Image,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func handleUserMe() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _ := userctx.FromContext(r.Context())
		render.JSON(w, newUserResponse(user))
	})
}

func handleUpdateProfile(userService userService, l logger.Logger) http.Handler {
	type request struct {
		FullName *string `json:"full_name" validate:"omitempty,max=100"`
		Bio      *string `json:"bio" validate:"omitempty,max=1000"`
		Image    *string `json:"image" validate:"omitempty,url"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		updated, err := userService.UpdateProfile(r.Context(), user.ID, models.ProfileUpdate{
			FullName: data.FullName,
			Bio:      data.Bio,
			Image:    data.Image,
		})
		if err != nil {
			serviceError(w, l, err, "User not found")
			return
		}

		render.JSON(w, newUserResponse(updated))
	})
}
