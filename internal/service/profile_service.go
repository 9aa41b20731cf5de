package service

import (
	"context"

	"blog-backend/internal/model"
	"blog-backend/internal/repository"
)

type ProfileService struct {
	repos *repository.Repositories
}

func NewProfileService(repos *repository.Repositories) *ProfileService {
	return &ProfileService{repos: repos}
}

// Get 获取用户及其资料，分别报告用户或资料缺失
func (s *ProfileService) Get(ctx context.Context, userID uint) (*model.User, *model.Profile, error) {
	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil, NewNotFoundError("User")
		}
		return nil, nil, err
	}
	profile, err := s.repos.Profiles.GetByUserID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil, &AppError{Kind: KindNotFound, Message: "Profile not found for this user."}
		}
		return nil, nil, err
	}
	return user, profile, nil
}

// ProfileUpdate 可编辑字段，nil 表示不修改
type ProfileUpdate struct {
	Image    *string
	FullName *string
	Bio      *string
	About    *string
	Author   *bool
	Country  *string
	Facebook *string
	Twitter  *string
}

// Update 仅资料所有者可修改
func (s *ProfileService) Update(ctx context.Context, identity, userID uint, in ProfileUpdate) (*model.User, *model.Profile, error) {
	if identity == 0 {
		return nil, nil, NewUnauthenticatedError("Authentication credentials were not provided.", nil)
	}
	user, profile, err := s.Get(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if identity != userID {
		return nil, nil, NewPermissionDeniedError("You do not have permission to perform this action.")
	}

	setString(&profile.Image, in.Image)
	setString(&profile.FullName, in.FullName)
	setString(&profile.Bio, in.Bio)
	setString(&profile.About, in.About)
	setString(&profile.Country, in.Country)
	setString(&profile.Facebook, in.Facebook)
	setString(&profile.Twitter, in.Twitter)
	if in.Author != nil {
		profile.Author = *in.Author
	}

	if err := s.repos.Profiles.Update(ctx, profile); err != nil {
		return nil, nil, err
	}
	return user, profile, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
