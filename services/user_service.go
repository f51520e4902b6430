package services

import (
	"context"

	"commerce-service/auth"
	"commerce-service/models"
	"commerce-service/repository"
)

type UserService struct {
	users repository.UserRepository
}

func NewUserService(store *repository.Store) *UserService {
	return &UserService{users: store.Users}
}

// Me returns the stored profile of the caller.
func (s *UserService) Me(ctx context.Context, id *models.Identity) (models.User, error) {
	var ownerID int64
	if id != nil {
		ownerID = id.UserID
	}
	if err := auth.Authorize(id, auth.ActionReadProfile, auth.Owned(ownerID)); err != nil {
		return models.User{}, err
	}
	return s.users.FindByID(ctx, id.UserID)
}
