package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/kumiteops/kumite-system/models"
	"github.com/kumiteops/kumite-system/repositories"
	"github.com/kumiteops/kumite-system/storage"
)

type CreateAthleteInput struct {
	Name   string  `json:"name"`
	Dojo   *string `json:"dojo,omitempty"`
	Belt   *string `json:"belt,omitempty"`
	Weight *string `json:"weight,omitempty"`
}

type UpdateAthleteInput struct {
	Name   *string               `json:"name,omitempty"`
	Dojo   *string               `json:"dojo,omitempty"`
	Belt   *string               `json:"belt,omitempty"`
	Weight *string               `json:"weight,omitempty"`
	Status *models.AthleteStatus `json:"status,omitempty"`
}

type AthleteService interface {
	CreateAthlete(ctx context.Context, input CreateAthleteInput) (*models.Athlete, error)
	GetAthlete(ctx context.Context, athleteID string) (*models.Athlete, error)
	ListAthletes(ctx context.Context) ([]*models.Athlete, error)
	UpdateAthlete(ctx context.Context, athleteID string, input UpdateAthleteInput) (*models.Athlete, error)
	DeleteAthlete(ctx context.Context, athleteID string) error
	UploadPhoto(ctx context.Context, athleteID, contentType string, reader io.Reader) (*models.Athlete, error)
}

type athleteService struct {
	athleteRepo repositories.AthleteRepository
	uploader    storage.FileUploader
	logger      *slog.Logger
}

func NewAthleteService(athleteRepo repositories.AthleteRepository, uploader storage.FileUploader, logger *slog.Logger) AthleteService {
	return &athleteService{athleteRepo: athleteRepo, uploader: uploader, logger: logger}
}

func (s *athleteService) CreateAthlete(ctx context.Context, input CreateAthleteInput) (*models.Athlete, error) {
	if input.Name == "" {
		return nil, ErrAthleteNameRequired
	}
	athlete := &models.Athlete{
		ID:     uuid.NewString(),
		Name:   input.Name,
		Dojo:   input.Dojo,
		Belt:   input.Belt,
		Weight: input.Weight,
		Status: models.AthleteStatusValid,
	}
	if err := s.athleteRepo.Create(ctx, athlete); err != nil {
		return nil, err
	}
	return athlete, nil
}

func (s *athleteService) GetAthlete(ctx context.Context, athleteID string) (*models.Athlete, error) {
	athlete, err := s.athleteRepo.GetByID(ctx, athleteID)
	if err != nil {
		if errors.Is(err, repositories.ErrAthleteNotFound) {
			return nil, ErrAthleteNotFound
		}
		return nil, err
	}
	return athlete, nil
}

func (s *athleteService) ListAthletes(ctx context.Context) ([]*models.Athlete, error) {
	athletes, err := s.athleteRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if athletes == nil {
		return []*models.Athlete{}, nil
	}
	return athletes, nil
}

func (s *athleteService) UpdateAthlete(ctx context.Context, athleteID string, input UpdateAthleteInput) (*models.Athlete, error) {
	athlete, err := s.GetAthlete(ctx, athleteID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, ErrAthleteNameRequired
		}
		athlete.Name = *input.Name
	}
	if input.Dojo != nil {
		athlete.Dojo = input.Dojo
	}
	if input.Belt != nil {
		athlete.Belt = input.Belt
	}
	if input.Weight != nil {
		athlete.Weight = input.Weight
	}
	if input.Status != nil {
		athlete.Status = *input.Status
	}

	if err := s.athleteRepo.Update(ctx, athlete); err != nil {
		return nil, err
	}
	return athlete, nil
}

func (s *athleteService) DeleteAthlete(ctx context.Context, athleteID string) error {
	err := s.athleteRepo.Delete(ctx, athleteID)
	if errors.Is(err, repositories.ErrAthleteNotFound) {
		return ErrAthleteNotFound
	}
	return err
}

// UploadPhoto stores the athlete's photo in object storage and records its
// public URL. A stale previous object is left for storage lifecycle cleanup.
func (s *athleteService) UploadPhoto(ctx context.Context, athleteID, contentType string, reader io.Reader) (*models.Athlete, error) {
	athlete, err := s.GetAthlete(ctx, athleteID)
	if err != nil {
		return nil, err
	}

	ext, err := extensionFromContentType(contentType)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("athletes/%s/photo%s", athlete.ID, ext)

	result, err := s.uploader.Upload(ctx, key, contentType, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to upload athlete photo: %w", err)
	}

	if err := s.athleteRepo.UpdatePhotoURL(ctx, athlete.ID, &result.Location); err != nil {
		s.logger.Error("photo uploaded but failed to persist URL",
			slog.String("athlete_id", athlete.ID), slog.Any("error", err))
		return nil, err
	}
	athlete.PhotoURL = &result.Location
	return athlete, nil
}
