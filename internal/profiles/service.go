package profiles

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/fynlabs/fyn-backend/internal/storage"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrUserNotFound    = errors.New("user not found")
)

type UserDirectory interface {
	UserExists(ctx context.Context, userID int64) (bool, error)
}

type Service interface {
	GetProfile(ctx context.Context, userID int64) (*Profile, error)
	UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*Profile, error)
	UploadAvatar(ctx context.Context, userID int64, file multipart.File, header *multipart.FileHeader) (string, error)
}

type service struct {
	repo    Repository
	users   UserDirectory
	uploads storage.UploadService
}

func NewService(repo Repository, users UserDirectory, uploads storage.UploadService) Service {
	return &service{repo: repo, users: users, uploads: uploads}
}

func (s *service) GetProfile(ctx context.Context, userID int64) (*Profile, error) {
	return s.repo.GetProfile(ctx, userID)
}

// UpdateProfile merges the request into the stored profile. Completing
// the required fields flips the account's profile-complete flag so
// matching opens up.
func (s *service) UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*Profile, error) {
	exists, err := s.users.UserExists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	profile, err := s.repo.GetProfile(ctx, userID)
	if err == ErrProfileNotFound {
		profile = &Profile{UserID: userID}
	} else if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		profile.DisplayName = req.DisplayName
	}
	if req.Bio != nil {
		profile.Bio = req.Bio
	}
	if req.BirthDate != nil {
		profile.BirthDate = req.BirthDate
	}
	if req.Gender != nil {
		profile.Gender = req.Gender
	}
	if req.Interests != nil {
		profile.Interests = req.Interests
	}
	if req.City != nil {
		profile.City = req.City
	}
	if req.Country != nil {
		profile.Country = req.Country
	}
	if req.Latitude != nil {
		profile.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		profile.Longitude = req.Longitude
	}

	if err := s.repo.UpsertProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("saving profile: %w", err)
	}

	if err := s.repo.SetProfileComplete(ctx, userID, profile.Complete()); err != nil {
		return nil, fmt.Errorf("updating completion flag: %w", err)
	}
	return profile, nil
}

func (s *service) UploadAvatar(ctx context.Context, userID int64, file multipart.File, header *multipart.FileHeader) (string, error) {
	url, err := s.uploads.UploadFile(ctx, file, header, "avatars")
	if err != nil {
		return "", fmt.Errorf("uploading avatar: %w", err)
	}

	if err := s.repo.SetAvatar(ctx, userID, url); err != nil {
		return "", err
	}
	return url, nil
}
