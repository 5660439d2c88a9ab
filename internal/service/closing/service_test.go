package closing

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/dairyfarm/internal/domain/models"
	"github.com/mamadbah2/dairyfarm/internal/lock"
	"github.com/mamadbah2/dairyfarm/internal/repository/memory"
	"github.com/mamadbah2/dairyfarm/internal/service/ledger"
)

var day = time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

type recordingSink struct {
	mu        sync.Mutex
	summaries []models.ProductionSummary
	err       error
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Publish(_ context.Context, summary models.ProductionSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries = append(s.summaries, summary)
	return s.err
}

func newCloser(t *testing.T, at time.Time, sinks ...Sink) (*Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	rec := models.ProductionRecord{ID: "p1", AnimalID: "A", AnimalType: models.AnimalCow, Date: day}
	rec.Apply(models.ProductionQuantities{Morning: 10, Evening: 8, Calf: 2, Posho: 1})
	require.NoError(t, store.CreateProduction(context.Background(), rec))
	require.NoError(t, store.CreateSale(context.Background(), models.SalesRecord{ID: "s1", Date: day, Quantity: 10}))

	svc := NewService(store, ledger.NewService(store, nil), lock.NewLocalLocker(), models.UTC, DefaultConfig, nil, sinks...)
	svc.WithNow(func() time.Time { return at })
	return svc, store
}

func TestCloseSnapshotsBalance(t *testing.T) {
	sink := &recordingSink{}
	svc, _ := newCloser(t, day.Add(22*time.Hour+5*time.Minute), sink)

	summary, err := svc.Close(context.Background(), Request{Date: day, Trigger: models.TriggerManual, ActorID: "mgr"})
	require.NoError(t, err)
	require.Equal(t, "2026-08-20", summary.ID)
	require.InDelta(t, 18, summary.TotalProduction, 1e-9)
	require.InDelta(t, 2, summary.TotalCalfFeeding, 1e-9)
	require.InDelta(t, 1, summary.TotalPosho, 1e-9)
	require.InDelta(t, 15, summary.NetProduction, 1e-9)
	require.InDelta(t, 10, summary.TotalSold, 1e-9)
	require.InDelta(t, 5, summary.FinalBalance, 1e-9)
	require.Equal(t, "mgr", summary.ClosedBy)
	require.Len(t, sink.summaries, 1)
}

func TestCloseTooEarly(t *testing.T) {
	svc, store := newCloser(t, day.Add(21*time.Hour))

	_, err := svc.Close(context.Background(), Request{Date: day, Trigger: models.TriggerManual})
	require.ErrorIs(t, err, models.ErrTooEarly)
	require.Zero(t, store.SummaryCount())
}

func TestAutomaticCloseWaitsForAutoHour(t *testing.T) {
	svc, _ := newCloser(t, day.Add(22*time.Hour+30*time.Minute))

	_, err := svc.Close(context.Background(), Request{Date: day, Trigger: models.TriggerAutomatic})
	require.ErrorIs(t, err, models.ErrTooEarly)

	svc.WithNow(func() time.Time { return day.Add(23 * time.Hour) })
	_, err = svc.Close(context.Background(), Request{Date: day, Trigger: models.TriggerAutomatic})
	require.NoError(t, err)
}

func TestCloseFutureDayTooEarly(t *testing.T) {
	svc, _ := newCloser(t, day.Add(23*time.Hour+30*time.Minute))

	_, err := svc.Close(context.Background(), Request{Date: models.NextDay(day)})
	require.ErrorIs(t, err, models.ErrTooEarly)
}

func TestClosePastDayIgnoresHour(t *testing.T) {
	svc, _ := newCloser(t, models.NextDay(day).Add(3*time.Hour))

	summary, err := svc.Close(context.Background(), Request{Date: day, Trigger: models.TriggerAutomatic})
	require.NoError(t, err)
	require.InDelta(t, 5, summary.FinalBalance, 1e-9)
}

func TestCloseTwiceReturnsAlreadyClosed(t *testing.T) {
	sink := &recordingSink{}
	svc, store := newCloser(t, day.Add(23*time.Hour), sink)
	ctx := context.Background()

	_, err := svc.Close(ctx, Request{Date: day})
	require.NoError(t, err)
	_, err = svc.Close(ctx, Request{Date: day})
	require.ErrorIs(t, err, models.ErrAlreadyClosed)
	require.ErrorIs(t, err, models.ErrConflict)

	require.Equal(t, 1, store.SummaryCount())
	require.Len(t, sink.summaries, 1)
}

func TestConcurrentClosesWriteOneSummary(t *testing.T) {
	svc, store := newCloser(t, day.Add(23*time.Hour))

	var (
		wg        sync.WaitGroup
		succeeded int32
		already   int32
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Close(context.Background(), Request{Date: day, Trigger: models.TriggerAutomatic})
			switch {
			case err == nil:
				atomic.AddInt32(&succeeded, 1)
			case errors.Is(err, models.ErrAlreadyClosed):
				atomic.AddInt32(&already, 1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), succeeded)
	require.Equal(t, int32(9), already)
	require.Equal(t, 1, store.SummaryCount())
}

func TestFinalBalanceCarriesIntoNextDay(t *testing.T) {
	svc, store := newCloser(t, day.Add(23*time.Hour))
	ctx := context.Background()

	summary, err := svc.Close(ctx, Request{Date: day})
	require.NoError(t, err)

	next, err := ledger.NewService(store, nil).AvailableMilk(ctx, models.NextDay(day))
	require.NoError(t, err)
	require.Equal(t, summary.FinalBalance, next.CarryOver)
	require.InDelta(t, 5, next.CurrentBalance, 1e-9)
}

func TestSinkFailureDoesNotUndoClose(t *testing.T) {
	sink := &recordingSink{err: errors.New("whatsapp down")}
	svc, store := newCloser(t, day.Add(23*time.Hour), sink)

	_, err := svc.Close(context.Background(), Request{Date: day})
	require.NoError(t, err)
	require.Equal(t, 1, store.SummaryCount())
}

func TestListValidatesRange(t *testing.T) {
	svc, _ := newCloser(t, day.Add(23*time.Hour))
	_, err := svc.List(context.Background(), day, models.PrevDay(day))
	require.ErrorIs(t, err, models.ErrValidation)
}

func TestCloseRejectedAfterLaterDayClosed(t *testing.T) {
	next := models.NextDay(day)
	svc, store := newCloser(t, next.Add(22*time.Hour+30*time.Minute))
	ctx := context.Background()

	later, err := svc.Close(ctx, Request{Date: next, ActorID: "mgr"})
	require.NoError(t, err)
	require.Zero(t, later.CarryOver)

	_, err = svc.Close(ctx, Request{Date: day, ActorID: "mgr"})
	require.ErrorIs(t, err, models.ErrLaterDayClosed)
	require.ErrorIs(t, err, models.ErrInvalidState)
	require.Equal(t, 1, store.SummaryCount())

	_, err = store.GetSummary(ctx, day)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestConcurrentAdjacentClosesKeepCarryOverChain(t *testing.T) {
	next := models.NextDay(day)
	svc, store := newCloser(t, next.Add(23*time.Hour))
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, d := range []time.Time{day, next} {
		wg.Add(1)
		go func(d time.Time) {
			defer wg.Done()
			_, _ = svc.Close(ctx, Request{Date: d, Trigger: models.TriggerAutomatic})
		}(d)
	}
	wg.Wait()

	// Whichever order the closes ran in, a closed day always feeds the next.
	latest, err := store.LatestSummary(ctx)
	require.NoError(t, err)
	require.True(t, latest.Date.Equal(next))
	first, err := store.GetSummary(ctx, day)
	if err == nil {
		require.Equal(t, first.FinalBalance, latest.CarryOver)
	} else {
		require.ErrorIs(t, err, models.ErrNotFound)
		require.Zero(t, latest.CarryOver)
	}
}
