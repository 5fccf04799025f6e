package cashbook

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arotkhata/arotkhata/internal/season"
)

type memoryCashRepo struct {
	funds    []FundInput
	incomes  []AdditionalIncome
	expenses []Expense
	cash     map[int64]*CashBalance
	nextID   int64
}

func newMemoryCashRepo() *memoryCashRepo {
	return &memoryCashRepo{cash: make(map[int64]*CashBalance)}
}

func (r *memoryCashRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, r)
}

func (r *memoryCashRepo) InsertFundInput(ctx context.Context, f FundInput) (int64, error) {
	r.nextID++
	f.ID = r.nextID
	f.CreatedAt = time.Now()
	r.funds = append(r.funds, f)
	return f.ID, nil
}

func (r *memoryCashRepo) InsertIncome(ctx context.Context, in AdditionalIncome) (int64, error) {
	r.nextID++
	in.ID = r.nextID
	in.CreatedAt = time.Now()
	r.incomes = append(r.incomes, in)
	return in.ID, nil
}

func (r *memoryCashRepo) InsertExpense(ctx context.Context, e Expense) (int64, error) {
	r.nextID++
	e.ID = r.nextID
	e.CreatedAt = time.Now()
	r.expenses = append(r.expenses, e)
	return e.ID, nil
}

func (r *memoryCashRepo) AddToCashBalance(ctx context.Context, seasonID int64, delta float64, at time.Time) error {
	cb, ok := r.cash[seasonID]
	if !ok {
		cb = &CashBalance{SeasonID: seasonID}
		r.cash[seasonID] = cb
	}
	cb.Amount += delta
	if at.After(cb.LastUpdated) {
		cb.LastUpdated = at
	}
	return nil
}

func (r *memoryCashRepo) GetCashBalance(ctx context.Context, seasonID int64) (*CashBalance, error) {
	cb, ok := r.cash[seasonID]
	if !ok {
		return nil, ErrBalanceNotFound
	}
	cp := *cb
	return &cp, nil
}

func (r *memoryCashRepo) ListFundInputs(ctx context.Context, seasonID int64) ([]FundInput, error) {
	var out []FundInput
	for _, f := range r.funds {
		if f.SeasonID == seasonID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *memoryCashRepo) ListIncomes(ctx context.Context, seasonID int64) ([]AdditionalIncome, error) {
	var out []AdditionalIncome
	for _, in := range r.incomes {
		if in.SeasonID == seasonID {
			out = append(out, in)
		}
	}
	return out, nil
}

func (r *memoryCashRepo) ListExpenses(ctx context.Context, seasonID int64) ([]Expense, error) {
	var out []Expense
	for _, e := range r.expenses {
		if e.SeasonID == seasonID {
			out = append(out, e)
		}
	}
	return out, nil
}

type stubSeasons struct{}

func (stubSeasons) Resolve(ctx context.Context, at time.Time) (*season.Season, error) {
	return &season.Season{ID: 7, Name: "Eiri2025"}, nil
}

func newTestService() (*Service, *memoryCashRepo) {
	repo := newMemoryCashRepo()
	svc := NewService(repo, stubSeasons{})
	svc.WithNow(func() time.Time {
		return time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	})
	return svc, repo
}

func TestCashMovements(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.AddFundInput(ctx, CreateFundInputRequest{Source: "owner", Amount: 10000})
	require.NoError(t, err)
	_, err = svc.AddIncome(ctx, CreateIncomeRequest{Source: "transport", Amount: 500})
	require.NoError(t, err)
	_, err = svc.AddExpense(ctx, CreateExpenseRequest{Category: "labour", Amount: 1200})
	require.NoError(t, err)

	cb, err := svc.CashBalance(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, 9300.0, cb.Amount)
}

func TestExpenseMayOverdrawCash(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.AddExpense(ctx, CreateExpenseRequest{Category: "rent", Amount: 800})
	require.NoError(t, err)

	cb, err := svc.CashBalance(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, -800.0, cb.Amount)
}

func TestSeasonAndDateDefaults(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	f, err := svc.AddFundInput(ctx, CreateFundInputRequest{Source: "owner", Amount: 100})
	require.NoError(t, err)
	require.Equal(t, int64(7), f.SeasonID)
	require.Equal(t, time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC), f.InputDate)
}

func TestExplicitSeasonRespected(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()

	_, err := svc.AddIncome(ctx, CreateIncomeRequest{SeasonID: 3, Source: "scrap", Amount: 250})
	require.NoError(t, err)
	require.Contains(t, repo.cash, int64(3))
}

func TestRejectsNonPositiveAmount(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.AddFundInput(ctx, CreateFundInputRequest{Source: "owner", Amount: 0})
	require.ErrorIs(t, err, ErrInvalidAmount)
	_, err = svc.AddExpense(ctx, CreateExpenseRequest{Category: "misc", Amount: -5})
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestEmptySeasonReportsZeroBalance(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	cb, err := svc.CashBalance(ctx, 42)
	require.NoError(t, err)
	require.Equal(t, 0.0, cb.Amount)
	require.Equal(t, int64(42), cb.SeasonID)
}

func TestListsAreSeasonScoped(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.AddExpense(ctx, CreateExpenseRequest{SeasonID: 1, Category: "labour", Amount: 10})
	require.NoError(t, err)
	_, err = svc.AddExpense(ctx, CreateExpenseRequest{SeasonID: 2, Category: "labour", Amount: 20})
	require.NoError(t, err)

	got, err := svc.ListExpenses(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, 10.0, got[0].Amount)
}
