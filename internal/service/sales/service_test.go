package sales

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/dairyfarm/internal/domain/models"
	"github.com/mamadbah2/dairyfarm/internal/lock"
	"github.com/mamadbah2/dairyfarm/internal/repository/memory"
	"github.com/mamadbah2/dairyfarm/internal/service/ledger"
)

var (
	today = time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	now   = today.Add(9 * time.Hour)
)

func seededService(t *testing.T, q models.ProductionQuantities) (*Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	rec := models.ProductionRecord{ID: "p1", AnimalID: "A", AnimalType: models.AnimalCow, Date: today}
	rec.Apply(q)
	require.NoError(t, store.CreateProduction(context.Background(), rec))

	svc := NewService(store, ledger.NewService(store, nil), lock.NewLocalLocker(), models.UTC, nil)
	svc.WithNow(func() time.Time { return now })
	return svc, store
}

func sale(quantity float64) CreateInput {
	return CreateInput{Date: today, Quantity: quantity, PricePerLiter: 60, PaymentMethod: models.PaymentCash, SoldBy: "user-1"}
}

func TestSaleScenario(t *testing.T) {
	svc, store := seededService(t, models.ProductionQuantities{Morning: 10, Evening: 8, Calf: 2, Posho: 1})
	ctx := context.Background()

	first, err := svc.Create(ctx, sale(10))
	require.NoError(t, err)
	require.InDelta(t, 600, first.TotalAmount, 1e-9)
	require.True(t, first.TimeRecorded.Equal(now))

	balance, err := ledger.NewService(store, nil).AvailableMilk(ctx, today)
	require.NoError(t, err)
	require.InDelta(t, 5, balance.CurrentBalance, 1e-9)

	_, err = svc.Create(ctx, sale(6))
	require.ErrorIs(t, err, models.ErrInsufficientBalance)

	_, err = svc.Create(ctx, sale(5))
	require.NoError(t, err)

	sales, err := svc.ListByDay(ctx, today)
	require.NoError(t, err)
	require.Len(t, sales, 2)
}

func TestSaleDefaultsToToday(t *testing.T) {
	svc, _ := seededService(t, models.ProductionQuantities{Morning: 4})
	in := sale(1)
	in.Date = time.Time{}

	rec, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	require.True(t, rec.Date.Equal(today))
}

func TestSaleValidation(t *testing.T) {
	svc, _ := seededService(t, models.ProductionQuantities{Morning: 4})
	ctx := context.Background()

	cases := map[string]CreateInput{
		"zero quantity":  {Quantity: 0, PricePerLiter: 50, PaymentMethod: models.PaymentCash},
		"negative price": {Quantity: 1, PricePerLiter: -1, PaymentMethod: models.PaymentCash},
		"bad method":     {Quantity: 1, PricePerLiter: 50, PaymentMethod: "IOU"},
		"sub-cent price": {Quantity: 1, PricePerLiter: 49.999, PaymentMethod: models.PaymentCash},
		"sub-ml volume":  {Quantity: 1.0004, PricePerLiter: 50, PaymentMethod: models.PaymentCash},
		"future date":    {Date: models.NextDay(today), Quantity: 1, PricePerLiter: 50, PaymentMethod: models.PaymentCash},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(ctx, in)
			require.ErrorIs(t, err, models.ErrValidation)
		})
	}
}

func TestSaleRejectedOnClosedDay(t *testing.T) {
	svc, store := seededService(t, models.ProductionQuantities{Morning: 4})
	ctx := context.Background()
	require.NoError(t, store.CreateSummary(ctx, models.ProductionSummary{Date: today, FinalBalance: 4}))

	_, err := svc.Create(ctx, sale(1))
	require.ErrorIs(t, err, models.ErrDayClosed)
}

func TestSaleRejectedOnceLaterDayClosed(t *testing.T) {
	svc, store := seededService(t, models.ProductionQuantities{Morning: 10, Evening: 8, Calf: 2, Posho: 1})
	ctx := context.Background()
	require.NoError(t, store.CreateSummary(ctx, models.ProductionSummary{Date: today}))

	in := sale(1)
	in.Date = models.PrevDay(today)
	_, err := svc.Create(ctx, in)
	require.ErrorIs(t, err, models.ErrDayClosed)
}

func TestConcurrentSalesNeverOversell(t *testing.T) {
	svc, store := seededService(t, models.ProductionQuantities{Morning: 20})
	ctx := context.Background()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Create(ctx, sale(1.5)); err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 13, accepted)
	balance, err := ledger.NewService(store, nil).AvailableMilk(ctx, today)
	require.NoError(t, err)
	require.InDelta(t, 19.5, balance.TotalSold, 1e-9)
	require.LessOrEqual(t, balance.TotalSold, balance.CarryOver+balance.TodayProduction)
}
