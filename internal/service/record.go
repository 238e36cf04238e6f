package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/recordhub/backend/internal/domain"
	"github.com/recordhub/backend/internal/repository"

	"github.com/google/uuid"
)

type recordService struct {
	recordRepository repository.Records
}

func newRecordService(recordRepository repository.Records) *recordService {
	return &recordService{
		recordRepository: recordRepository,
	}
}

type CreateRecordInput struct {
	Title   string
	Content *string
}

type UpdateRecordInput struct {
	Title   *string
	Content *string
}

func (s *recordService) Create(ctx context.Context, userID uuid.UUID, input CreateRecordInput) (*domain.Record, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate record id failed: %w", err)
	}

	record := &domain.Record{
		ID:      id,
		UserID:  userID,
		Title:   input.Title,
		Content: input.Content,
	}

	if err := s.recordRepository.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("create record failed: %w", err)
	}

	return s.recordRepository.GetOne(ctx, id, userID)
}

func (s *recordService) GetAllByUser(ctx context.Context, userID uuid.UUID) ([]domain.Record, error) {
	return s.recordRepository.GetAllByUser(ctx, userID)
}

func (s *recordService) Update(ctx context.Context, userID uuid.UUID, id uuid.UUID, input UpdateRecordInput) (*domain.Record, error) {
	record, err := s.recordRepository.Update(ctx, id, userID, repository.RecordUpdate{
		Title:   input.Title,
		Content: input.Content,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("update record failed: %w", err)
	}

	return record, nil
}

func (s *recordService) Delete(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	deleted, err := s.recordRepository.Delete(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("delete record failed: %w", err)
	}

	if !deleted {
		return ErrRecordNotFound
	}

	return nil
}
