package reports

import (
	"context"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arotkhata/arotkhata/internal/shared"
)

// Service assembles report views. Aggregates are read from independent
// queries fanned out with errgroup, then cached under a short TTL. Freshness
// within the TTL window is best effort; the reconcile job bumps the cache
// version after rewriting balances, and on-demand enqueues do the same.
type Service struct {
	repo  Repository
	cache *Cache
}

func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// DailySummary reports all movements on one date within a season.
func (s *Service) DailySummary(ctx context.Context, seasonID int64, day time.Time) (*DailySummary, error) {
	key, err := s.cache.BuildKey(ctx, "reports", "daily",
		strconv.FormatInt(seasonID, 10), day.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}

	var out DailySummary
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		return s.loadDailySummary(ctx, seasonID, day)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) loadDailySummary(ctx context.Context, seasonID int64, day time.Time) (*DailySummary, error) {
	out := DailySummary{SeasonID: seasonID, Date: day}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tc, err := s.repo.SalesForDay(ctx, seasonID, day)
		out.Sales = tc
		return err
	})
	g.Go(func() error {
		tc, err := s.repo.PaymentsForDay(ctx, seasonID, day)
		out.Payments = tc
		return err
	})
	g.Go(func() error {
		tc, err := s.repo.FundsForDay(ctx, seasonID, day)
		out.Funds = tc
		return err
	})
	g.Go(func() error {
		tc, err := s.repo.IncomesForDay(ctx, seasonID, day)
		out.Incomes = tc
		return err
	})
	g.Go(func() error {
		tc, err := s.repo.ExpensesForDay(ctx, seasonID, day)
		out.Expenses = tc
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out.NetCash = shared.Round2(out.Payments.Total + out.Funds.Total + out.Incomes.Total - out.Expenses.Total)
	out.NetCashDisplay = shared.FormatBDT(out.NetCash)
	return &out, nil
}

// SeasonSummary reports a season's books end to end.
func (s *Service) SeasonSummary(ctx context.Context, seasonID int64) (*SeasonSummary, error) {
	key, err := s.cache.BuildKey(ctx, "reports", "season", strconv.FormatInt(seasonID, 10))
	if err != nil {
		return nil, err
	}

	var out SeasonSummary
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		return s.loadSeasonSummary(ctx, seasonID)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) loadSeasonSummary(ctx context.Context, seasonID int64) (*SeasonSummary, error) {
	out := SeasonSummary{SeasonID: seasonID}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := s.repo.SumTransactions(ctx, seasonID)
		out.TotalSales = v
		return err
	})
	g.Go(func() error {
		v, err := s.repo.SumPayments(ctx, seasonID)
		out.TotalPayments = v
		return err
	})
	g.Go(func() error {
		v, err := s.repo.SumFundInputs(ctx, seasonID)
		out.TotalFunds = v
		return err
	})
	g.Go(func() error {
		v, err := s.repo.SumIncomes(ctx, seasonID)
		out.TotalIncome = v
		return err
	})
	g.Go(func() error {
		v, err := s.repo.SumExpenses(ctx, seasonID)
		out.TotalExpenses = v
		return err
	})
	g.Go(func() error {
		due, advance, customers, err := s.repo.BalanceTotals(ctx, seasonID)
		out.OutstandingDue = due
		out.AdvanceHeld = advance
		out.Customers = customers
		return err
	})
	g.Go(func() error {
		v, err := s.repo.CashAmount(ctx, seasonID)
		out.CashInHand = v
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out.CashInHandDisplay = shared.FormatBDT(out.CashInHand)
	out.OutstandingDueDisplay = shared.FormatBDT(out.OutstandingDue)
	return &out, nil
}

// CustomerStatement returns a customer's season position with every sale and
// payment in date order.
func (s *Service) CustomerStatement(ctx context.Context, customerID, seasonID int64) (*CustomerStatement, error) {
	key, err := s.cache.BuildKey(ctx, "reports", "statement",
		strconv.FormatInt(customerID, 10), strconv.FormatInt(seasonID, 10))
	if err != nil {
		return nil, err
	}

	var out CustomerStatement
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		return s.loadCustomerStatement(ctx, customerID, seasonID)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) loadCustomerStatement(ctx context.Context, customerID, seasonID int64) (*CustomerStatement, error) {
	out := CustomerStatement{CustomerID: customerID, SeasonID: seasonID}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b, err := s.repo.CustomerBalance(ctx, customerID, seasonID)
		out.Balance = b
		return err
	})
	g.Go(func() error {
		lines, err := s.repo.StatementLines(ctx, customerID, seasonID)
		out.Lines = lines
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out.BalanceDisplay = shared.FormatBDT(out.Balance.Balance)
	return &out, nil
}

// Invalidate drops all cached reports by bumping the cache version. The
// reconcile job calls it after rewriting balances; everything else expires
// with the TTL.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}
