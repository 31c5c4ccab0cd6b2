package profiles

import (
	"context"
	"mime/multipart"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepository struct {
	profiles map[int64]*Profile
	complete map[int64]bool
	avatars  map[int64]string
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		profiles: make(map[int64]*Profile),
		complete: make(map[int64]bool),
		avatars:  make(map[int64]string),
	}
}

func (r *fakeRepository) GetProfile(ctx context.Context, userID int64) (*Profile, error) {
	profile, ok := r.profiles[userID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	copied := *profile
	return &copied, nil
}

func (r *fakeRepository) UpsertProfile(ctx context.Context, profile *Profile) error {
	stored := *profile
	stored.UpdatedAt = time.Now()
	r.profiles[profile.UserID] = &stored
	return nil
}

func (r *fakeRepository) SetAvatar(ctx context.Context, userID int64, avatarURL string) error {
	r.avatars[userID] = avatarURL
	return nil
}

func (r *fakeRepository) SetProfileComplete(ctx context.Context, userID int64, complete bool) error {
	r.complete[userID] = complete
	return nil
}

type allUsersDirectory struct{}

func (allUsersDirectory) UserExists(ctx context.Context, userID int64) (bool, error) {
	return userID > 0 && userID < 100, nil
}

type fakeUploadService struct {
	uploaded []string
}

func (u *fakeUploadService) UploadFile(ctx context.Context, file multipart.File, header *multipart.FileHeader, folder string) (string, error) {
	url := "https://cdn.example.com/" + folder + "/" + header.Filename
	u.uploaded = append(u.uploaded, url)
	return url, nil
}

func (u *fakeUploadService) DeleteFile(ctx context.Context, url string) error {
	return nil
}

func strPtr(s string) *string { return &s }

func TestUpdateProfileUnknownUser(t *testing.T) {
	svc := NewService(newFakeRepository(), allUsersDirectory{}, nil)

	_, err := svc.UpdateProfile(context.Background(), 500, &UpdateProfileRequest{
		DisplayName: strPtr("Ghost"),
	})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateProfileCreatesOnFirstWrite(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, allUsersDirectory{}, nil)

	profile, err := svc.UpdateProfile(context.Background(), 1, &UpdateProfileRequest{
		DisplayName: strPtr("Dana"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), profile.UserID)
	require.NotNil(t, profile.DisplayName)
	assert.Equal(t, "Dana", *profile.DisplayName)
}

func TestUpdateProfileMergesNilFields(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, allUsersDirectory{}, nil)

	_, err := svc.UpdateProfile(context.Background(), 1, &UpdateProfileRequest{
		DisplayName: strPtr("Dana"),
		Bio:         strPtr("hello"),
	})
	require.NoError(t, err)

	// A second update leaving DisplayName nil must not clear it
	profile, err := svc.UpdateProfile(context.Background(), 1, &UpdateProfileRequest{
		Bio: strPtr("updated bio"),
	})
	require.NoError(t, err)
	require.NotNil(t, profile.DisplayName)
	assert.Equal(t, "Dana", *profile.DisplayName)
	assert.Equal(t, "updated bio", *profile.Bio)
}

func TestUpdateProfileTracksCompletion(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, allUsersDirectory{}, nil)

	_, err := svc.UpdateProfile(context.Background(), 1, &UpdateProfileRequest{
		DisplayName: strPtr("Dana"),
	})
	require.NoError(t, err)
	assert.False(t, repo.complete[1])

	birth := time.Date(1995, 4, 12, 0, 0, 0, 0, time.UTC)
	_, err = svc.UpdateProfile(context.Background(), 1, &UpdateProfileRequest{
		BirthDate: &birth,
		Interests: []string{"hiking", "jazz"},
	})
	require.NoError(t, err)
	assert.True(t, repo.complete[1])
}

func TestUploadAvatarStoresURL(t *testing.T) {
	repo := newFakeRepository()
	uploads := &fakeUploadService{}
	svc := NewService(repo, allUsersDirectory{}, uploads)

	header := &multipart.FileHeader{Filename: "me.jpg"}
	url, err := svc.UploadAvatar(context.Background(), 1, nil, header)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/avatars/me.jpg", url)
	assert.Equal(t, url, repo.avatars[1])
}
