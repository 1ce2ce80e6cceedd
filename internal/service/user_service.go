package service

import (
	"context"
	"strings"

	"foodgram/internal/models"
	"foodgram/internal/repository"
	"foodgram/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// UserService handles account registration and profile management.
type UserService struct {
	userRepo repository.UserRepository
	media    *MediaService
}

// RegisterInput carries the fields of a signup request.
type RegisterInput struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Password  string
}

// NewUserService returns a new UserService.
func NewUserService(userRepo repository.UserRepository, media *MediaService) *UserService {
	return &UserService{userRepo: userRepo, media: media}
}

// Register validates the input, hashes the password and creates the account.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.Username = strings.TrimSpace(in.Username)

	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateName("first_name", in.FirstName); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateName("last_name", in.LastName); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if existing, err := s.userRepo.GetByEmail(ctx, in.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewValidationError("A user with this email already exists")
	}
	if existing, err := s.userRepo.GetByUsername(ctx, in.Username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewValidationError("A user with this username already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Email:     in.Email,
		Username:  in.Username,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Password:  string(hashed),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks the email/password pair and returns the user.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("Invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid email or password")
	}
	return user, nil
}

// GetUserByID returns the user's profile.
func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// ListUsers returns a page of users plus the total count.
func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, int64, error) {
	users, err := s.userRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// SetPassword changes the user's password after verifying the current one.
func (s *UserService) SetPassword(ctx context.Context, userID uint, currentPassword, newPassword string) error {
	user, err := s.userRepo.GetByIDWithPassword(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(currentPassword)); err != nil {
		return models.NewValidationError("Current password is incorrect")
	}
	if err := validation.ValidatePassword(newPassword); err != nil {
		return models.NewValidationError(err.Error())
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}

	user.Password = string(hashed)
	return s.userRepo.Update(ctx, user)
}

// SetAvatar stores the avatar image and updates the profile. The previous
// avatar file is removed after a successful swap.
func (s *UserService) SetAvatar(ctx context.Context, userID uint, dataURI string) (*models.User, error) {
	if dataURI == "" {
		return nil, models.NewValidationError("Avatar image is required")
	}

	user, err := s.userRepo.GetByIDWithPassword(ctx, userID)
	if err != nil {
		return nil, err
	}

	relPath, err := s.media.SaveDataURI(dataURI, "avatars")
	if err != nil {
		return nil, err
	}

	old := user.Avatar
	user.Avatar = relPath
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.removeAvatarIfUnused(ctx, relPath)
		return nil, err
	}
	if old != relPath {
		s.removeAvatarIfUnused(ctx, old)
	}
	return user, nil
}

// removeAvatarIfUnused deletes the stored file unless another user still
// points at it. Avatars are content-addressed, so identical uploads share
// one file on disk.
func (s *UserService) removeAvatarIfUnused(ctx context.Context, avatarPath string) {
	if avatarPath == "" {
		return
	}
	refs, err := s.userRepo.CountByAvatar(ctx, avatarPath)
	if err != nil || refs > 0 {
		return
	}
	s.media.Remove(avatarPath)
}

// DeleteAvatar removes the user's avatar.
func (s *UserService) DeleteAvatar(ctx context.Context, userID uint) error {
	user, err := s.userRepo.GetByIDWithPassword(ctx, userID)
	if err != nil {
		return err
	}

	old := user.Avatar
	user.Avatar = ""
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}
	s.removeAvatarIfUnused(ctx, old)
	return nil
}
