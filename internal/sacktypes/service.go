package sacktypes

import (
	"context"
	"fmt"
	"time"

	"github.com/arotkhata/arotkhata/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, req CreateSackTypeRequest) (*SackType, error) {
	st := SackType{
		Name:      req.Name,
		UnitPrice: shared.Round2(req.UnitPrice),
		IsActive:  true,
	}
	id, err := s.repo.Create(ctx, st)
	if err != nil {
		return nil, fmt.Errorf("create sack type: %w", err)
	}
	st.ID = id
	st.CreatedAt = time.Now()
	st.UpdatedAt = st.CreatedAt
	return &st, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*SackType, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateSackTypeRequest) (*SackType, error) {
	updates := make(map[string]any)
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.UnitPrice != nil {
		updates["unit_price"] = shared.Round2(*req.UnitPrice)
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return nil, fmt.Errorf("update sack type: %w", err)
		}
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, activeOnly bool) ([]SackType, error) {
	return s.repo.List(ctx, activeOnly)
}
