package cashbook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arotkhata/arotkhata/internal/season"
	"github.com/arotkhata/arotkhata/internal/shared"
)

var (
	// ErrBalanceNotFound indicates no cash has been recorded for the season yet.
	ErrBalanceNotFound = errors.New("cashbook: no cash balance for season")
	// ErrInvalidAmount indicates a non-positive amount.
	ErrInvalidAmount = errors.New("cashbook: amount must be positive")
)

// SeasonResolver yields the accounting period for a point in time.
type SeasonResolver interface {
	Resolve(ctx context.Context, at time.Time) (*season.Season, error)
}

// Service records cash movements. Every entry type is a flat fact row; the
// only derived state is the running per-season cash balance.
type Service struct {
	repo    Repository
	seasons SeasonResolver
	now     func() time.Time
}

func NewService(repo Repository, seasons SeasonResolver) *Service {
	return &Service{repo: repo, seasons: seasons, now: time.Now}
}

// WithNow overrides the clock, for tests.
func (s *Service) WithNow(now func() time.Time) {
	s.now = now
}

func (s *Service) resolveSeason(ctx context.Context, seasonID int64) (int64, error) {
	if seasonID > 0 {
		return seasonID, nil
	}
	sn, err := s.seasons.Resolve(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("resolve season: %w", err)
	}
	return sn.ID, nil
}

func (s *Service) AddFundInput(ctx context.Context, req CreateFundInputRequest) (*FundInput, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	seasonID, err := s.resolveSeason(ctx, req.SeasonID)
	if err != nil {
		return nil, err
	}
	date := req.Date
	if date.IsZero() {
		date = s.now()
	}

	f := FundInput{
		SeasonID:  seasonID,
		Source:    req.Source,
		Amount:    shared.Round2(req.Amount),
		InputDate: date,
		Notes:     req.Notes,
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.InsertFundInput(ctx, f)
		if err != nil {
			return err
		}
		f.ID = id
		return tx.AddToCashBalance(ctx, f.SeasonID, f.Amount, f.InputDate)
	})
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *Service) AddIncome(ctx context.Context, req CreateIncomeRequest) (*AdditionalIncome, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	seasonID, err := s.resolveSeason(ctx, req.SeasonID)
	if err != nil {
		return nil, err
	}
	date := req.Date
	if date.IsZero() {
		date = s.now()
	}

	in := AdditionalIncome{
		SeasonID:   seasonID,
		Source:     req.Source,
		Amount:     shared.Round2(req.Amount),
		IncomeDate: date,
		Notes:      req.Notes,
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.InsertIncome(ctx, in)
		if err != nil {
			return err
		}
		in.ID = id
		return tx.AddToCashBalance(ctx, in.SeasonID, in.Amount, in.IncomeDate)
	})
	if err != nil {
		return nil, err
	}
	return &in, nil
}

// AddExpense records an operating cost and subtracts it from the season's
// cash. The balance is allowed to go negative; the book records what
// happened, it does not police spending.
func (s *Service) AddExpense(ctx context.Context, req CreateExpenseRequest) (*Expense, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	seasonID, err := s.resolveSeason(ctx, req.SeasonID)
	if err != nil {
		return nil, err
	}
	date := req.Date
	if date.IsZero() {
		date = s.now()
	}

	e := Expense{
		SeasonID:    seasonID,
		Category:    req.Category,
		Amount:      shared.Round2(req.Amount),
		ExpenseDate: date,
		Description: req.Description,
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.InsertExpense(ctx, e)
		if err != nil {
			return err
		}
		e.ID = id
		return tx.AddToCashBalance(ctx, e.SeasonID, -e.Amount, e.ExpenseDate)
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// CashBalance returns the running cash total for a season. A season with no
// recorded movements yet reports zero rather than not-found.
func (s *Service) CashBalance(ctx context.Context, seasonID int64) (*CashBalance, error) {
	cb, err := s.repo.GetCashBalance(ctx, seasonID)
	if errors.Is(err, ErrBalanceNotFound) {
		return &CashBalance{SeasonID: seasonID}, nil
	}
	if err != nil {
		return nil, err
	}
	return cb, nil
}

func (s *Service) ListFundInputs(ctx context.Context, seasonID int64) ([]FundInput, error) {
	return s.repo.ListFundInputs(ctx, seasonID)
}

func (s *Service) ListIncomes(ctx context.Context, seasonID int64) ([]AdditionalIncome, error) {
	return s.repo.ListIncomes(ctx, seasonID)
}

func (s *Service) ListExpenses(ctx context.Context, seasonID int64) ([]Expense, error) {
	return s.repo.ListExpenses(ctx, seasonID)
}
