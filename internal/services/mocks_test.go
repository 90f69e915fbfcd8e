package services

import (
	"context"
	"io"
	"time"

	"raffled/internal/models"
	"raffled/internal/utils"
	"raffled/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testLogger() *logger.Logger {
	log, _ := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel})
	log.SetOutput(io.Discard)
	return log
}

// --- Mock RaffleRepository ---

type mockRaffleRepo struct {
	createFn              func(ctx context.Context, raffle *models.Raffle) error
	getByIDFn             func(ctx context.Context, id primitive.ObjectID) (*models.Raffle, error)
	getByNameFn           func(ctx context.Context, name string) (*models.Raffle, error)
	updateFn              func(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	listFn                func(ctx context.Context, publicOnly bool, params *utils.PaginationParams) ([]*models.Raffle, int64, error)
	transitionStatusFn    func(ctx context.Context, id primitive.ObjectID, from []models.RaffleStatus, to models.RaffleStatus) (bool, error)
	setParticipantCountFn func(ctx context.Context, id primitive.ObjectID, count int64) error
}

func (m *mockRaffleRepo) Create(ctx context.Context, raffle *models.Raffle) error {
	if m.createFn == nil {
		raffle.ID = primitive.NewObjectID()
		return nil
	}
	return m.createFn(ctx, raffle)
}

func (m *mockRaffleRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Raffle, error) {
	return m.getByIDFn(ctx, id)
}

func (m *mockRaffleRepo) GetByName(ctx context.Context, name string) (*models.Raffle, error) {
	return m.getByNameFn(ctx, name)
}

func (m *mockRaffleRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	if m.updateFn == nil {
		return nil
	}
	return m.updateFn(ctx, id, updates)
}

func (m *mockRaffleRepo) List(ctx context.Context, publicOnly bool, params *utils.PaginationParams) ([]*models.Raffle, int64, error) {
	return m.listFn(ctx, publicOnly, params)
}

func (m *mockRaffleRepo) TransitionStatus(ctx context.Context, id primitive.ObjectID, from []models.RaffleStatus, to models.RaffleStatus) (bool, error) {
	return m.transitionStatusFn(ctx, id, from, to)
}

func (m *mockRaffleRepo) SetParticipantCount(ctx context.Context, id primitive.ObjectID, count int64) error {
	if m.setParticipantCountFn == nil {
		return nil
	}
	return m.setParticipantCountFn(ctx, id, count)
}

// --- Mock TicketRepository ---

type mockTicketRepo struct {
	createManyFn                 func(ctx context.Context, tickets []*models.RaffleTicket) error
	getByIDFn                    func(ctx context.Context, id primitive.ObjectID) (*models.RaffleTicket, error)
	getByVerificationCodeFn      func(ctx context.Context, code string) (*models.RaffleTicket, error)
	getByUserAndRaffleFn         func(ctx context.Context, raffleID, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.RaffleTicket, int64, error)
	getActiveByRaffleFn          func(ctx context.Context, raffleID primitive.ObjectID) ([]*models.RaffleTicket, error)
	countActiveByRaffleFn        func(ctx context.Context, raffleID primitive.ObjectID) (int64, error)
	countActiveByUserAndRaffleFn func(ctx context.Context, raffleID, userID primitive.ObjectID) (int64, error)
	existsBySourceFn             func(ctx context.Context, raffleID, userID primitive.ObjectID, sourceType models.TicketSource, sourceRef string) (bool, error)
	updateFn                     func(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	markWonFn                    func(ctx context.Context, ids []primitive.ObjectID) error
}

func (m *mockTicketRepo) CreateMany(ctx context.Context, tickets []*models.RaffleTicket) error {
	if m.createManyFn == nil {
		for _, ticket := range tickets {
			ticket.ID = primitive.NewObjectID()
		}
		return nil
	}
	return m.createManyFn(ctx, tickets)
}

func (m *mockTicketRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.RaffleTicket, error) {
	return m.getByIDFn(ctx, id)
}

func (m *mockTicketRepo) GetByVerificationCode(ctx context.Context, code string) (*models.RaffleTicket, error) {
	return m.getByVerificationCodeFn(ctx, code)
}

func (m *mockTicketRepo) GetByUserAndRaffle(ctx context.Context, raffleID, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.RaffleTicket, int64, error) {
	return m.getByUserAndRaffleFn(ctx, raffleID, userID, params)
}

func (m *mockTicketRepo) GetActiveByRaffle(ctx context.Context, raffleID primitive.ObjectID) ([]*models.RaffleTicket, error) {
	return m.getActiveByRaffleFn(ctx, raffleID)
}

func (m *mockTicketRepo) CountActiveByRaffle(ctx context.Context, raffleID primitive.ObjectID) (int64, error) {
	if m.countActiveByRaffleFn == nil {
		return 0, nil
	}
	return m.countActiveByRaffleFn(ctx, raffleID)
}

func (m *mockTicketRepo) CountActiveByUserAndRaffle(ctx context.Context, raffleID, userID primitive.ObjectID) (int64, error) {
	if m.countActiveByUserAndRaffleFn == nil {
		return 0, nil
	}
	return m.countActiveByUserAndRaffleFn(ctx, raffleID, userID)
}

func (m *mockTicketRepo) ExistsBySource(ctx context.Context, raffleID, userID primitive.ObjectID, sourceType models.TicketSource, sourceRef string) (bool, error) {
	if m.existsBySourceFn == nil {
		return false, nil
	}
	return m.existsBySourceFn(ctx, raffleID, userID, sourceType, sourceRef)
}

func (m *mockTicketRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	if m.updateFn == nil {
		return nil
	}
	return m.updateFn(ctx, id, updates)
}

func (m *mockTicketRepo) MarkWon(ctx context.Context, ids []primitive.ObjectID) error {
	if m.markWonFn == nil {
		return nil
	}
	return m.markWonFn(ctx, ids)
}

// --- Mock PrizeRepository ---

type mockPrizeRepo struct {
	createFn               func(ctx context.Context, prize *models.RafflePrize) error
	getByIDFn              func(ctx context.Context, id primitive.ObjectID) (*models.RafflePrize, error)
	getByRaffleFn          func(ctx context.Context, raffleID primitive.ObjectID) ([]*models.RafflePrize, error)
	getAvailableByRaffleFn func(ctx context.Context, raffleID primitive.ObjectID) ([]*models.RafflePrize, error)
	incrementAwardedFn     func(ctx context.Context, id primitive.ObjectID, count int) error
}

func (m *mockPrizeRepo) Create(ctx context.Context, prize *models.RafflePrize) error {
	if m.createFn == nil {
		prize.ID = primitive.NewObjectID()
		return nil
	}
	return m.createFn(ctx, prize)
}

func (m *mockPrizeRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.RafflePrize, error) {
	return m.getByIDFn(ctx, id)
}

func (m *mockPrizeRepo) GetByRaffle(ctx context.Context, raffleID primitive.ObjectID) ([]*models.RafflePrize, error) {
	return m.getByRaffleFn(ctx, raffleID)
}

func (m *mockPrizeRepo) GetAvailableByRaffle(ctx context.Context, raffleID primitive.ObjectID) ([]*models.RafflePrize, error) {
	return m.getAvailableByRaffleFn(ctx, raffleID)
}

func (m *mockPrizeRepo) IncrementAwarded(ctx context.Context, id primitive.ObjectID, count int) error {
	if m.incrementAwardedFn == nil {
		return nil
	}
	return m.incrementAwardedFn(ctx, id, count)
}

// --- Mock WinnerRepository ---

type mockWinnerRepo struct {
	createManyFn            func(ctx context.Context, winners []*models.RaffleWinner) error
	getByIDFn               func(ctx context.Context, id primitive.ObjectID) (*models.RaffleWinner, error)
	getByVerificationCodeFn func(ctx context.Context, code string) (*models.RaffleWinner, error)
	getByRaffleFn           func(ctx context.Context, raffleID primitive.ObjectID) ([]*models.RaffleWinner, error)
	countByRaffleFn         func(ctx context.Context, raffleID primitive.ObjectID) (int64, error)
	updateFn                func(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	getClaimExpiredFn       func(ctx context.Context, asOf time.Time) ([]*models.RaffleWinner, error)
}

func (m *mockWinnerRepo) CreateMany(ctx context.Context, winners []*models.RaffleWinner) error {
	if m.createManyFn == nil {
		for _, winner := range winners {
			winner.ID = primitive.NewObjectID()
		}
		return nil
	}
	return m.createManyFn(ctx, winners)
}

func (m *mockWinnerRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.RaffleWinner, error) {
	return m.getByIDFn(ctx, id)
}

func (m *mockWinnerRepo) GetByVerificationCode(ctx context.Context, code string) (*models.RaffleWinner, error) {
	return m.getByVerificationCodeFn(ctx, code)
}

func (m *mockWinnerRepo) GetByRaffle(ctx context.Context, raffleID primitive.ObjectID) ([]*models.RaffleWinner, error) {
	return m.getByRaffleFn(ctx, raffleID)
}

func (m *mockWinnerRepo) CountByRaffle(ctx context.Context, raffleID primitive.ObjectID) (int64, error) {
	if m.countByRaffleFn == nil {
		return 0, nil
	}
	return m.countByRaffleFn(ctx, raffleID)
}

func (m *mockWinnerRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	if m.updateFn == nil {
		return nil
	}
	return m.updateFn(ctx, id, updates)
}

func (m *mockWinnerRepo) GetClaimExpired(ctx context.Context, asOf time.Time) ([]*models.RaffleWinner, error) {
	return m.getClaimExpiredFn(ctx, asOf)
}

// --- Mock DrawLocker ---

type mockLocker struct {
	setNXFn  func(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	deleteFn func(ctx context.Context, keys ...string) error
}

func (m *mockLocker) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	if m.setNXFn == nil {
		return true, nil
	}
	return m.setNXFn(ctx, key, value, expiration)
}

func (m *mockLocker) Delete(ctx context.Context, keys ...string) error {
	if m.deleteFn == nil {
		return nil
	}
	return m.deleteFn(ctx, keys...)
}
