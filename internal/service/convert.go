package service

import (
	"github.com/mmynk/kudos/internal/models"
	"github.com/mmynk/kudos/pkg/api"
)

func voteToAPI(v models.Vote) *api.Vote {
	return &api.Vote{
		Id:        v.ID,
		FromUser:  v.FromUser,
		ToUser:    v.ToUser,
		Month:     v.Month,
		Year:      v.Year,
		Status:    string(v.Status),
		Message:   v.Message,
		CreatedAt: v.CreatedAt.Unix(),
	}
}

func userToAPI(u *models.User) *api.User {
	return &api.User{
		Id:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
		Group:  u.Group,
		Status: string(u.Status),
	}
}
