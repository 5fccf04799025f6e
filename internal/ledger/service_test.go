package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arotkhata/arotkhata/internal/season"
	"github.com/arotkhata/arotkhata/internal/shared"
)

type balanceKey struct {
	customerID int64
	seasonID   int64
}

type memoryLedgerRepo struct {
	customers  map[int64]bool
	sackPrices map[int64]float64

	transactions map[int64]*Transaction
	items        map[int64][]TransactionItem
	payments     map[int64]*Payment
	balances     map[balanceKey]*CustomerBalance
	cash         map[int64]float64

	nextTxnID     int64
	nextItemID    int64
	nextPaymentID int64
}

func newMemoryLedgerRepo() *memoryLedgerRepo {
	return &memoryLedgerRepo{
		customers:    make(map[int64]bool),
		sackPrices:   make(map[int64]float64),
		transactions: make(map[int64]*Transaction),
		items:        make(map[int64][]TransactionItem),
		payments:     make(map[int64]*Payment),
		balances:     make(map[balanceKey]*CustomerBalance),
		cash:         make(map[int64]float64),
	}
}

func (r *memoryLedgerRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, r)
}

func (r *memoryLedgerRepo) CustomerExists(ctx context.Context, id int64) (bool, error) {
	return r.customers[id], nil
}

func (r *memoryLedgerRepo) GetSackTypePrice(ctx context.Context, id int64) (float64, error) {
	price, ok := r.sackPrices[id]
	if !ok {
		return 0, shared.ErrNotFound
	}
	return price, nil
}

func (r *memoryLedgerRepo) InsertTransaction(ctx context.Context, t Transaction) (int64, error) {
	r.nextTxnID++
	t.ID = r.nextTxnID
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	t.Items = nil
	r.transactions[t.ID] = &t
	return t.ID, nil
}

func (r *memoryLedgerRepo) InsertTransactionItems(ctx context.Context, transactionID int64, items []TransactionItem) error {
	for _, it := range items {
		r.nextItemID++
		it.ID = r.nextItemID
		it.TransactionID = transactionID
		r.items[transactionID] = append(r.items[transactionID], it)
	}
	return nil
}

func (r *memoryLedgerRepo) GetTransactionForUpdate(ctx context.Context, id int64) (*Transaction, error) {
	t, ok := r.transactions[id]
	if !ok {
		return nil, ErrTransactionNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *memoryLedgerRepo) UpdateTransactionAmounts(ctx context.Context, id int64, paid, due float64, status PaymentStatus) error {
	t, ok := r.transactions[id]
	if !ok {
		return ErrTransactionNotFound
	}
	t.PaidAmount = paid
	t.DueAmount = due
	t.PaymentStatus = status
	t.UpdatedAt = time.Now()
	return nil
}

func (r *memoryLedgerRepo) InsertPayment(ctx context.Context, p Payment) (int64, error) {
	r.nextPaymentID++
	p.ID = r.nextPaymentID
	p.CreatedAt = time.Now()
	r.payments[p.ID] = &p
	return p.ID, nil
}

func (r *memoryLedgerRepo) UpsertCustomerBalance(ctx context.Context, customerID, seasonID int64) error {
	var sales, pays float64
	var lastTxn, lastPay *time.Time
	for _, t := range r.transactions {
		if t.CustomerID == customerID && t.SeasonID == seasonID {
			sales += t.TotalAmount
			d := t.TransactionDate
			if lastTxn == nil || d.After(*lastTxn) {
				lastTxn = &d
			}
		}
	}
	for _, p := range r.payments {
		if p.CustomerID == customerID && p.SeasonID == seasonID {
			pays += p.Amount
			d := p.PaymentDate
			if lastPay == nil || d.After(*lastPay) {
				lastPay = &d
			}
		}
	}
	balance := sales - pays
	advance := pays - sales
	if balance < 0 {
		balance = 0
	}
	if advance < 0 {
		advance = 0
	}
	r.balances[balanceKey{customerID, seasonID}] = &CustomerBalance{
		CustomerID:          customerID,
		SeasonID:            seasonID,
		TotalSales:          sales,
		TotalPayments:       pays,
		Balance:             balance,
		AdvancePayment:      advance,
		Status:              DeriveBalanceStatus(balance, advance),
		LastTransactionDate: lastTxn,
		LastPaymentDate:     lastPay,
		UpdatedAt:           time.Now(),
	}
	return nil
}

func (r *memoryLedgerRepo) AddToCashBalance(ctx context.Context, seasonID int64, delta float64, at time.Time) error {
	r.cash[seasonID] += delta
	return nil
}

func (r *memoryLedgerRepo) GetTransaction(ctx context.Context, id int64) (*Transaction, error) {
	t, ok := r.transactions[id]
	if !ok {
		return nil, ErrTransactionNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *memoryLedgerRepo) ListTransactionItems(ctx context.Context, transactionID int64) ([]TransactionItem, error) {
	return r.items[transactionID], nil
}

func (r *memoryLedgerRepo) ListTransactions(ctx context.Context, req ListTransactionsRequest) ([]Transaction, int, error) {
	var out []Transaction
	for _, t := range r.transactions {
		if req.CustomerID > 0 && t.CustomerID != req.CustomerID {
			continue
		}
		if req.SeasonID > 0 && t.SeasonID != req.SeasonID {
			continue
		}
		if req.Status != "" && t.PaymentStatus != req.Status {
			continue
		}
		out = append(out, *t)
	}
	return out, len(out), nil
}

func (r *memoryLedgerRepo) ListPayments(ctx context.Context, req ListPaymentsRequest) ([]Payment, error) {
	var out []Payment
	for _, p := range r.payments {
		if req.CustomerID > 0 && p.CustomerID != req.CustomerID {
			continue
		}
		if req.SeasonID > 0 && p.SeasonID != req.SeasonID {
			continue
		}
		if req.TransactionID > 0 && p.TransactionID != req.TransactionID {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *memoryLedgerRepo) GetCustomerBalance(ctx context.Context, customerID, seasonID int64) (*CustomerBalance, error) {
	b, ok := r.balances[balanceKey{customerID, seasonID}]
	if !ok {
		return nil, ErrCustomerNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *memoryLedgerRepo) ListCustomerBalances(ctx context.Context, seasonID int64) ([]CustomerBalance, error) {
	var out []CustomerBalance
	for k, b := range r.balances {
		if k.seasonID == seasonID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *memoryLedgerRepo) ListSeasonCustomerIDs(ctx context.Context, seasonID int64) ([]int64, error) {
	seen := make(map[int64]bool)
	for _, t := range r.transactions {
		if t.SeasonID == seasonID {
			seen[t.CustomerID] = true
		}
	}
	for _, p := range r.payments {
		if p.SeasonID == seasonID {
			seen[p.CustomerID] = true
		}
	}
	var ids []int64
	for id := range seen {
		ids = append(ids, id)
	}
	return ids, nil
}

type stubSeasons struct {
	season season.Season
}

func (s *stubSeasons) Resolve(ctx context.Context, at time.Time) (*season.Season, error) {
	cp := s.season
	return &cp, nil
}

func newTestService() (*Service, *memoryLedgerRepo) {
	repo := newMemoryLedgerRepo()
	repo.customers[100] = true
	repo.sackPrices[10] = 50
	repo.sackPrices[11] = 20.5

	svc := NewService(repo, &stubSeasons{season: season.Season{ID: 1, Name: "Eiri2025"}})
	svc.WithNow(func() time.Time {
		return time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	})
	return svc, repo
}

func TestCreateTransactionComputesTotals(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	txn, err := svc.CreateTransaction(ctx, CreateTransactionRequest{
		CustomerID: 100,
		Items: []TransactionItemInput{
			{SackTypeID: 10, Quantity: 10},               // 10 x 50 = 500
			{SackTypeID: 11, Quantity: 20, UnitPrice: 5}, // override: 20 x 5 = 100
		},
	})
	require.NoError(t, err)
	require.Equal(t, 600.0, txn.TotalAmount)
	require.Equal(t, 0.0, txn.PaidAmount)
	require.Equal(t, 600.0, txn.DueAmount)
	require.Equal(t, StatusDue, txn.PaymentStatus)
	require.Len(t, txn.Items, 2)
	require.Equal(t, 500.0, txn.Items[0].TotalPrice)
	require.Equal(t, 50.0, txn.Items[0].UnitPrice)
}

func TestCreateTransactionDefaultsSeasonAndDate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	txn, err := svc.CreateTransaction(ctx, CreateTransactionRequest{
		CustomerID: 100,
		Items:      []TransactionItemInput{{SackTypeID: 10, Quantity: 1}},
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), txn.SeasonID)
	require.Equal(t, time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC), txn.TransactionDate)
}

func TestCreateTransactionExplicitTotalPriceWins(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	txn, err := svc.CreateTransaction(ctx, CreateTransactionRequest{
		CustomerID: 100,
		Items: []TransactionItemInput{
			{SackTypeID: 10, Quantity: 10, UnitPrice: 50, TotalPrice: 450},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 450.0, txn.TotalAmount)
}

func TestCreateTransactionItemRounding(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	txn, err := svc.CreateTransaction(ctx, CreateTransactionRequest{
		CustomerID: 100,
		Items: []TransactionItemInput{
			{SackTypeID: 10, Quantity: 2.5, UnitPrice: 10.25},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 25.63, txn.Items[0].TotalPrice)
}

func TestCreateTransactionUnknownCustomer(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.CreateTransaction(ctx, CreateTransactionRequest{
		CustomerID: 999,
		Items:      []TransactionItemInput{{SackTypeID: 10, Quantity: 1}},
	})
	require.ErrorIs(t, err, ErrCustomerNotFound)
}

func TestCreateTransactionUnknownSackType(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.CreateTransaction(ctx, CreateTransactionRequest{
		CustomerID: 100,
		Items:      []TransactionItemInput{{SackTypeID: 77, Quantity: 2}},
	})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCreateTransactionRequiresItems(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.CreateTransaction(ctx, CreateTransactionRequest{CustomerID: 100})
	require.ErrorIs(t, err, ErrNoItems)
}

// Settlement walk-through: 1000 due, pay 400, pay 600.
func TestPaymentSettlementProgression(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()

	txn, err := svc.CreateTransaction(ctx, CreateTransactionRequest{
		CustomerID: 100,
		Items:      []TransactionItemInput{{SackTypeID: 10, Quantity: 20}}, // 1000
	})
	require.NoError(t, err)
	require.Equal(t, 1000.0, txn.DueAmount)
	require.Equal(t, StatusDue, txn.PaymentStatus)

	_, err = svc.RecordPayment(ctx, RecordPaymentRequest{
		CustomerID: 100, TransactionID: txn.ID, Amount: 400,
	})
	require.NoError(t, err)

	updated, _ := repo.GetTransaction(ctx, txn.ID)
	require.Equal(t, 400.0, updated.PaidAmount)
	require.Equal(t, 600.0, updated.DueAmount)
	require.Equal(t, StatusPartial, updated.PaymentStatus)
	require.Equal(t, updated.TotalAmount-updated.PaidAmount, updated.DueAmount)

	_, err = svc.RecordPayment(ctx, RecordPaymentRequest{
		CustomerID: 100, TransactionID: txn.ID, Amount: 600,
	})
	require.NoError(t, err)

	updated, _ = repo.GetTransaction(ctx, txn.ID)
	require.Equal(t, 1000.0, updated.PaidAmount)
	require.Equal(t, 0.0, updated.DueAmount)
	require.Equal(t, StatusPaid, updated.PaymentStatus)
}

func TestOverpaymentFlowsToAdvance(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()

	txn, err := svc.CreateTransaction(ctx, CreateTransactionRequest{
		CustomerID: 100,
		Items:      []TransactionItemInput{{SackTypeID: 10, Quantity: 20}}, // 1000
	})
	require.NoError(t, err)

	_, err = svc.RecordPayment(ctx, RecordPaymentRequest{
		CustomerID: 100, TransactionID: txn.ID, Amount: 1200,
	})
	require.NoError(t, err)

	updated, _ := repo.GetTransaction(ctx, txn.ID)
	require.Equal(t, StatusPaid, updated.PaymentStatus)
	require.Equal(t, -200.0, updated.DueAmount)

	bal, err := svc.GetCustomerBalance(ctx, 100, 1)
	require.NoError(t, err)
	require.Equal(t, 0.0, bal.Balance)
	require.Equal(t, 200.0, bal.AdvancePayment)
	require.Equal(t, BalanceAdvance, bal.Status)
}

func TestPaymentUnknownTransaction(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.RecordPayment(ctx, RecordPaymentRequest{
		CustomerID: 100, TransactionID: 42, Amount: 100,
	})
	require.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestPaymentCustomerMismatch(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()
	repo.customers[200] = true

	txn, err := svc.CreateTransaction(ctx, CreateTransactionRequest{
		CustomerID: 100,
		Items:      []TransactionItemInput{{SackTypeID: 10, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = svc.RecordPayment(ctx, RecordPaymentRequest{
		CustomerID: 200, TransactionID: txn.ID, Amount: 10,
	})
	require.ErrorIs(t, err, ErrCustomerMismatch)

	// failed payment leaves the transaction untouched
	unchanged, _ := repo.GetTransaction(ctx, txn.ID)
	require.Equal(t, 0.0, unchanged.PaidAmount)
}

// Two transactions (300, 700) and one unlinked payment (500) for the same
// customer and season.
func TestUnlinkedPaymentBalance(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.CreateTransaction(ctx, CreateTransactionRequest{
		CustomerID: 100,
		Items:      []TransactionItemInput{{SackTypeID: 10, Quantity: 6}}, // 300
	})
	require.NoError(t, err)
	_, err = svc.CreateTransaction(ctx, CreateTransactionRequest{
		CustomerID: 100,
		Items:      []TransactionItemInput{{SackTypeID: 10, Quantity: 14}}, // 700
	})
	require.NoError(t, err)

	_, err = svc.RecordPayment(ctx, RecordPaymentRequest{CustomerID: 100, Amount: 500})
	require.NoError(t, err)

	bal, err := svc.GetCustomerBalance(ctx, 100, 1)
	require.NoError(t, err)
	require.Equal(t, 1000.0, bal.TotalSales)
	require.Equal(t, 500.0, bal.TotalPayments)
	require.Equal(t, 500.0, bal.Balance)
	require.Equal(t, 0.0, bal.AdvancePayment)
	require.Equal(t, BalanceDue, bal.Status)
	require.NotNil(t, bal.LastTransactionDate)
	require.NotNil(t, bal.LastPaymentDate)
}

func TestBalanceNeverBothPositive(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.CreateTransaction(ctx, CreateTransactionRequest{
		CustomerID: 100,
		Items:      []TransactionItemInput{{SackTypeID: 10, Quantity: 10}}, // 500
	})
	require.NoError(t, err)
	_, err = svc.RecordPayment(ctx, RecordPaymentRequest{CustomerID: 100, Amount: 500})
	require.NoError(t, err)

	bal, err := svc.GetCustomerBalance(ctx, 100, 1)
	require.NoError(t, err)
	require.Equal(t, 0.0, bal.Balance)
	require.Equal(t, 0.0, bal.AdvancePayment)
	require.Equal(t, BalanceClear, bal.Status)
}

func TestPaymentFeedsCashBalance(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()

	_, err := svc.RecordPayment(ctx, RecordPaymentRequest{CustomerID: 100, Amount: 300})
	require.NoError(t, err)
	_, err = svc.RecordPayment(ctx, RecordPaymentRequest{CustomerID: 100, Amount: 200})
	require.NoError(t, err)

	require.Equal(t, 500.0, repo.cash[1])
}

func TestReconcileSeasonHealsTamperedBalance(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()

	_, err := svc.CreateTransaction(ctx, CreateTransactionRequest{
		CustomerID: 100,
		Items:      []TransactionItemInput{{SackTypeID: 10, Quantity: 4}}, // 200
	})
	require.NoError(t, err)

	// simulate a missed incremental update
	repo.balances[balanceKey{100, 1}].Balance = 9999

	n, err := svc.ReconcileSeason(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	bal, _ := svc.GetCustomerBalance(ctx, 100, 1)
	require.Equal(t, 200.0, bal.Balance)
}

func TestStatusFor(t *testing.T) {
	require.Equal(t, StatusDue, StatusFor(0, 100))
	require.Equal(t, StatusPartial, StatusFor(40, 60))
	require.Equal(t, StatusPaid, StatusFor(100, 0))
	require.Equal(t, StatusPaid, StatusFor(120, -20))
}
