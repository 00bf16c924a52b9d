package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/haimtran/sdq-assistant/internal/dto"
	"github.com/haimtran/sdq-assistant/internal/model"
	"github.com/haimtran/sdq-assistant/internal/questionbank"
	"github.com/haimtran/sdq-assistant/internal/repository"
	"github.com/rs/zerolog/log"
)

// ChildService handles child registration and sharing-code lookup. The code
// is what a parent or teacher presents to start their own test about the
// same child.
type ChildService interface {
	Register(ctx context.Context, req dto.RegisterChildRequest) (*dto.RegisterChildResponse, error)
	Update(ctx context.Context, childID string, req dto.UpdateChildRequest) error
	LoginByCode(ctx context.Context, code string) (*dto.ChildLoginResponse, error)
}

type childService struct {
	childRepo repository.ChildRepository
}

func NewChildService(childRepo repository.ChildRepository) ChildService {
	return &childService{childRepo: childRepo}
}

func (s *childService) Register(ctx context.Context, req dto.RegisterChildRequest) (*dto.RegisterChildResponse, error) {
	if _, err := questionbank.ForAge(req.Age); err != nil {
		return nil, err
	}
	child := &model.Child{
		ChildID: uuid.NewString(),
		Name:    req.Name,
		Age:     req.Age,
		Gender:  req.Gender,
		Code:    uuid.NewString()[:6],
	}
	if err := s.childRepo.Create(ctx, child); err != nil {
		return nil, fmt.Errorf("failed to register child: %w", err)
	}
	log.Info().Str("childID", child.ChildID).Msg("Child registered")
	return &dto.RegisterChildResponse{
		ChildID: child.ChildID,
		Code:    child.Code,
		Message: "Child registered successfully",
	}, nil
}

// Update corrects the child's name or age, e.g. a typo at registration. The
// new age must still fall inside a question band.
func (s *childService) Update(ctx context.Context, childID string, req dto.UpdateChildRequest) error {
	if _, err := questionbank.ForAge(req.Age); err != nil {
		return err
	}
	child, err := s.childRepo.FindByChildID(ctx, childID)
	if err != nil {
		return fmt.Errorf("failed to look up child: %w", err)
	}
	if child == nil {
		return fmt.Errorf("child %s not found", childID)
	}
	if err := s.childRepo.UpdateNameAge(ctx, childID, req.Name, req.Age); err != nil {
		return fmt.Errorf("failed to update child: %w", err)
	}
	log.Info().Str("childID", childID).Msg("Child details updated")
	return nil
}

func (s *childService) LoginByCode(ctx context.Context, code string) (*dto.ChildLoginResponse, error) {
	child, err := s.childRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up child by code: %w", err)
	}
	if child == nil {
		return nil, fmt.Errorf("invalid code")
	}
	return &dto.ChildLoginResponse{
		ChildID: child.ChildID,
		Name:    child.Name,
		Age:     child.Age,
	}, nil
}
