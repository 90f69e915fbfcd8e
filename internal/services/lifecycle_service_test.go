package services

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"raffled/internal/draw"
	"raffled/internal/models"
	"raffled/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func drawableRaffle() *models.Raffle {
	now := time.Now()
	return &models.Raffle{
		ID:                    primitive.NewObjectID(),
		Name:                  "Year End Draw",
		Status:                models.RaffleStatusActive,
		Type:                  models.RaffleTypeStandard,
		WinnerSelectionMethod: models.SelectionRandom,
		RegistrationStart:     now.Add(-72 * time.Hour),
		RegistrationEnd:       now.Add(-24 * time.Hour),
		DrawDate:              now.Add(-time.Hour),
	}
}

func activeTickets(raffleID primitive.ObjectID, n int) []*models.RaffleTicket {
	tickets := make([]*models.RaffleTicket, n)
	for i := range tickets {
		tickets[i] = &models.RaffleTicket{
			ID:         primitive.NewObjectID(),
			RaffleID:   raffleID,
			UserID:     primitive.NewObjectID(),
			Status:     models.TicketStatusActive,
			SourceType: models.SourcePurchase,
			CreatedAt:  time.Now().Add(-time.Duration(i) * time.Hour),
		}
	}
	return tickets
}

func newTestLifecycleService(
	raffleRepo *mockRaffleRepo,
	ticketRepo *mockTicketRepo,
	prizeRepo *mockPrizeRepo,
	winnerRepo *mockWinnerRepo,
	locker DrawLocker,
) RaffleLifecycleService {
	engine := draw.NewEngine(rand.New(rand.NewSource(1)), nil)
	return NewRaffleLifecycleService(raffleRepo, ticketRepo, prizeRepo, winnerRepo,
		engine, locker, nil, time.Minute, testLogger())
}

func TestCreateRaffle_Validation(t *testing.T) {
	svc := newTestLifecycleService(&mockRaffleRepo{}, &mockTicketRepo{}, &mockPrizeRepo{}, &mockWinnerRepo{}, nil)
	now := time.Now()

	cases := []struct {
		name   string
		mutate func(r *models.Raffle)
	}{
		{"missing name", func(r *models.Raffle) { r.Name = "" }},
		{"start after end", func(r *models.Raffle) { r.RegistrationStart = r.RegistrationEnd.Add(time.Hour) }},
		{"draw before registration end", func(r *models.Raffle) { r.DrawDate = r.RegistrationEnd.Add(-time.Hour) }},
		{"max below min", func(r *models.Raffle) {
			r.MinTicketsToParticipate = 5
			r.MaxTicketsPerUser = 2
		}},
	}

	for _, tc := range cases {
		raffle := &models.Raffle{
			Name:              "New Raffle",
			RegistrationStart: now,
			RegistrationEnd:   now.Add(24 * time.Hour),
			DrawDate:          now.Add(48 * time.Hour),
		}
		tc.mutate(raffle)

		_, err := svc.CreateRaffle(context.Background(), raffle)

		var entryErr *utils.InvalidEntryError
		assert.ErrorAs(t, err, &entryErr, tc.name)
	}
}

func TestCreateRaffle_StartsAsDraft(t *testing.T) {
	svc := newTestLifecycleService(&mockRaffleRepo{}, &mockTicketRepo{}, &mockPrizeRepo{}, &mockWinnerRepo{}, nil)
	now := time.Now()

	created, err := svc.CreateRaffle(context.Background(), &models.Raffle{
		Name:              "New Raffle",
		Status:            models.RaffleStatusActive, // callers cannot skip draft
		RegistrationStart: now,
		RegistrationEnd:   now.Add(24 * time.Hour),
		DrawDate:          now.Add(48 * time.Hour),
	})

	require.NoError(t, err)
	assert.Equal(t, models.RaffleStatusDraft, created.Status)
}

func TestActivate_RequiresAvailablePrize(t *testing.T) {
	raffle := drawableRaffle()
	raffle.Status = models.RaffleStatusDraft

	raffleRepo := &mockRaffleRepo{
		getByIDFn: func(ctx context.Context, id primitive.ObjectID) (*models.Raffle, error) {
			return raffle, nil
		},
	}
	prizeRepo := &mockPrizeRepo{
		getAvailableByRaffleFn: func(ctx context.Context, raffleID primitive.ObjectID) ([]*models.RafflePrize, error) {
			return nil, nil
		},
	}

	svc := newTestLifecycleService(raffleRepo, &mockTicketRepo{}, prizeRepo, &mockWinnerRepo{}, nil)
	_, err := svc.Activate(context.Background(), raffle.ID)

	var stateErr *utils.InvalidStateError
	assert.ErrorAs(t, err, &stateErr)
}

func TestPause_FromDraftRejected(t *testing.T) {
	raffle := drawableRaffle()
	raffle.Status = models.RaffleStatusDraft

	raffleRepo := &mockRaffleRepo{
		getByIDFn: func(ctx context.Context, id primitive.ObjectID) (*models.Raffle, error) {
			return raffle, nil
		},
		transitionStatusFn: func(ctx context.Context, id primitive.ObjectID, from []models.RaffleStatus, to models.RaffleStatus) (bool, error) {
			return false, nil
		},
	}

	svc := newTestLifecycleService(raffleRepo, &mockTicketRepo{}, &mockPrizeRepo{}, &mockWinnerRepo{}, nil)
	_, err := svc.Pause(context.Background(), raffle.ID)

	var stateErr *utils.InvalidStateError
	assert.ErrorAs(t, err, &stateErr)
}

func TestAddPrize_OnlyOnDraft(t *testing.T) {
	raffle := drawableRaffle() // active

	raffleRepo := &mockRaffleRepo{
		getByIDFn: func(ctx context.Context, id primitive.ObjectID) (*models.Raffle, error) {
			return raffle, nil
		},
	}

	svc := newTestLifecycleService(raffleRepo, &mockTicketRepo{}, &mockPrizeRepo{}, &mockWinnerRepo{}, nil)
	_, err := svc.AddPrize(context.Background(), &models.RafflePrize{
		RaffleID:          raffle.ID,
		Name:              "Gift Card",
		QuantityAvailable: 1,
	})

	var stateErr *utils.InvalidStateError
	assert.ErrorAs(t, err, &stateErr)
}

func TestExecuteDraw_Success(t *testing.T) {
	raffle := drawableRaffle()
	tickets := activeTickets(raffle.ID, 10)
	prize := &models.RafflePrize{
		ID:                primitive.NewObjectID(),
		RaffleID:          raffle.ID,
		Name:              "Grand Prize",
		Type:              models.PrizeTypeGiftCard,
		Tier:              1,
		QuantityAvailable: 2,
	}

	var markedWon []primitive.ObjectID
	incremented := map[primitive.ObjectID]int{}

	raffleRepo := &mockRaffleRepo{
		getByIDFn: func(ctx context.Context, id primitive.ObjectID) (*models.Raffle, error) {
			return raffle, nil
		},
		transitionStatusFn: func(ctx context.Context, id primitive.ObjectID, from []models.RaffleStatus, to models.RaffleStatus) (bool, error) {
			return true, nil
		},
	}
	ticketRepo := &mockTicketRepo{
		getActiveByRaffleFn: func(ctx context.Context, raffleID primitive.ObjectID) ([]*models.RaffleTicket, error) {
			return tickets, nil
		},
		markWonFn: func(ctx context.Context, ids []primitive.ObjectID) error {
			markedWon = ids
			return nil
		},
	}
	prizeRepo := &mockPrizeRepo{
		getAvailableByRaffleFn: func(ctx context.Context, raffleID primitive.ObjectID) ([]*models.RafflePrize, error) {
			return []*models.RafflePrize{prize}, nil
		},
		incrementAwardedFn: func(ctx context.Context, id primitive.ObjectID, count int) error {
			incremented[id] += count
			return nil
		},
	}

	var persistedWinners []*models.RaffleWinner
	recheckedRaffle := primitive.NilObjectID
	winnerRepo := &mockWinnerRepo{
		createManyFn: func(ctx context.Context, winners []*models.RaffleWinner) error {
			for _, winner := range winners {
				winner.ID = primitive.NewObjectID()
			}
			persistedWinners = winners
			return nil
		},
		countByRaffleFn: func(ctx context.Context, raffleID primitive.ObjectID) (int64, error) {
			recheckedRaffle = raffleID
			return int64(len(persistedWinners)), nil
		},
	}

	svc := newTestLifecycleService(raffleRepo, ticketRepo, prizeRepo, winnerRepo, &mockLocker{})
	result, err := svc.ExecuteDraw(context.Background(), raffle.ID)

	require.NoError(t, err)
	require.Len(t, result.Winners, 2)
	assert.Equal(t, models.RaffleStatusCompleted, result.Raffle.Status)
	assert.Len(t, markedWon, 2)
	assert.Equal(t, 2, incremented[prize.ID])
	assert.Equal(t, raffle.ID, recheckedRaffle, "stored winner totals must be re-checked after the draw")
	require.Len(t, result.Events, 2)
	assert.Equal(t, "raffle.drawn", result.Events[1].EventName())
}

func TestExecuteDraw_AlreadyCompleted(t *testing.T) {
	raffle := drawableRaffle()
	raffle.Status = models.RaffleStatusCompleted

	raffleRepo := &mockRaffleRepo{
		getByIDFn: func(ctx context.Context, id primitive.ObjectID) (*models.Raffle, error) {
			return raffle, nil
		},
	}

	svc := newTestLifecycleService(raffleRepo, &mockTicketRepo{}, &mockPrizeRepo{}, &mockWinnerRepo{}, nil)
	_, err := svc.ExecuteDraw(context.Background(), raffle.ID)

	var stateErr *utils.InvalidStateError
	require.ErrorAs(t, err, &stateErr)
	assert.Contains(t, stateErr.Message, "already been drawn")
}

func TestExecuteDraw_BeforeDrawDate(t *testing.T) {
	raffle := drawableRaffle()
	raffle.DrawDate = time.Now().Add(24 * time.Hour)

	raffleRepo := &mockRaffleRepo{
		getByIDFn: func(ctx context.Context, id primitive.ObjectID) (*models.Raffle, error) {
			return raffle, nil
		},
	}

	svc := newTestLifecycleService(raffleRepo, &mockTicketRepo{}, &mockPrizeRepo{}, &mockWinnerRepo{}, nil)
	_, err := svc.ExecuteDraw(context.Background(), raffle.ID)

	var stateErr *utils.InvalidStateError
	assert.ErrorAs(t, err, &stateErr)
}

func TestExecuteDraw_ConcurrentAttemptLosesTransition(t *testing.T) {
	raffle := drawableRaffle()

	raffleRepo := &mockRaffleRepo{
		getByIDFn: func(ctx context.Context, id primitive.ObjectID) (*models.Raffle, error) {
			return raffle, nil
		},
		transitionStatusFn: func(ctx context.Context, id primitive.ObjectID, from []models.RaffleStatus, to models.RaffleStatus) (bool, error) {
			return false, nil // another drawer completed first
		},
	}
	ticketRepo := &mockTicketRepo{
		getActiveByRaffleFn: func(ctx context.Context, raffleID primitive.ObjectID) ([]*models.RaffleTicket, error) {
			return activeTickets(raffle.ID, 3), nil
		},
	}
	prizeRepo := &mockPrizeRepo{
		getAvailableByRaffleFn: func(ctx context.Context, raffleID primitive.ObjectID) ([]*models.RafflePrize, error) {
			return []*models.RafflePrize{{ID: primitive.NewObjectID(), Tier: 1, QuantityAvailable: 1}}, nil
		},
	}

	svc := newTestLifecycleService(raffleRepo, ticketRepo, prizeRepo, &mockWinnerRepo{}, &mockLocker{})
	_, err := svc.ExecuteDraw(context.Background(), raffle.ID)

	var stateErr *utils.InvalidStateError
	require.ErrorAs(t, err, &stateErr)
	assert.Contains(t, stateErr.Message, "already been drawn")
}

func TestExecuteDraw_LockHeldByAnotherDrawer(t *testing.T) {
	raffle := drawableRaffle()

	raffleRepo := &mockRaffleRepo{
		getByIDFn: func(ctx context.Context, id primitive.ObjectID) (*models.Raffle, error) {
			return raffle, nil
		},
	}
	locker := &mockLocker{
		setNXFn: func(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
			return false, nil
		},
	}

	svc := newTestLifecycleService(raffleRepo, &mockTicketRepo{}, &mockPrizeRepo{}, &mockWinnerRepo{}, locker)
	_, err := svc.ExecuteDraw(context.Background(), raffle.ID)

	var stateErr *utils.InvalidStateError
	require.ErrorAs(t, err, &stateErr)
	assert.Contains(t, stateErr.Message, "in progress")
}

func TestExecuteDraw_NoPrizes(t *testing.T) {
	raffle := drawableRaffle()

	raffleRepo := &mockRaffleRepo{
		getByIDFn: func(ctx context.Context, id primitive.ObjectID) (*models.Raffle, error) {
			return raffle, nil
		},
	}
	prizeRepo := &mockPrizeRepo{
		getAvailableByRaffleFn: func(ctx context.Context, raffleID primitive.ObjectID) ([]*models.RafflePrize, error) {
			return nil, nil
		},
	}

	svc := newTestLifecycleService(raffleRepo, &mockTicketRepo{}, prizeRepo, &mockWinnerRepo{}, &mockLocker{})
	_, err := svc.ExecuteDraw(context.Background(), raffle.ID)

	var stateErr *utils.InvalidStateError
	assert.ErrorAs(t, err, &stateErr)
}

func TestExecuteDraw_NoEligibleTickets(t *testing.T) {
	raffle := drawableRaffle()

	raffleRepo := &mockRaffleRepo{
		getByIDFn: func(ctx context.Context, id primitive.ObjectID) (*models.Raffle, error) {
			return raffle, nil
		},
	}
	ticketRepo := &mockTicketRepo{
		getActiveByRaffleFn: func(ctx context.Context, raffleID primitive.ObjectID) ([]*models.RaffleTicket, error) {
			return nil, nil
		},
	}
	prizeRepo := &mockPrizeRepo{
		getAvailableByRaffleFn: func(ctx context.Context, raffleID primitive.ObjectID) ([]*models.RafflePrize, error) {
			return []*models.RafflePrize{{ID: primitive.NewObjectID(), Tier: 1, QuantityAvailable: 1}}, nil
		},
	}

	svc := newTestLifecycleService(raffleRepo, ticketRepo, prizeRepo, &mockWinnerRepo{}, &mockLocker{})
	_, err := svc.ExecuteDraw(context.Background(), raffle.ID)

	var stateErr *utils.InvalidStateError
	assert.ErrorAs(t, err, &stateErr)
}

func TestExecuteDraw_WinnerPersistFailureRestoresStatus(t *testing.T) {
	raffle := drawableRaffle()

	restored := false
	raffleRepo := &mockRaffleRepo{
		getByIDFn: func(ctx context.Context, id primitive.ObjectID) (*models.Raffle, error) {
			return raffle, nil
		},
		transitionStatusFn: func(ctx context.Context, id primitive.ObjectID, from []models.RaffleStatus, to models.RaffleStatus) (bool, error) {
			if to == models.RaffleStatusActive {
				restored = true
			}
			return true, nil
		},
	}
	ticketRepo := &mockTicketRepo{
		getActiveByRaffleFn: func(ctx context.Context, raffleID primitive.ObjectID) ([]*models.RaffleTicket, error) {
			return activeTickets(raffle.ID, 3), nil
		},
	}
	prizeRepo := &mockPrizeRepo{
		getAvailableByRaffleFn: func(ctx context.Context, raffleID primitive.ObjectID) ([]*models.RafflePrize, error) {
			return []*models.RafflePrize{{ID: primitive.NewObjectID(), Tier: 1, QuantityAvailable: 1}}, nil
		},
	}
	winnerRepo := &mockWinnerRepo{
		createManyFn: func(ctx context.Context, winners []*models.RaffleWinner) error {
			return errors.New("write concern failed")
		},
	}

	svc := newTestLifecycleService(raffleRepo, ticketRepo, prizeRepo, winnerRepo, &mockLocker{})
	_, err := svc.ExecuteDraw(context.Background(), raffle.ID)

	require.Error(t, err)
	assert.True(t, restored, "status must be restored when winners cannot be persisted")
}
