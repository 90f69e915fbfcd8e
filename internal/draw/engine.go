package draw

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"raffled/internal/models"
	"raffled/internal/utils"
	"raffled/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Engine computes the winner set for a draw. It is a pure function over its
// inputs: no storage access, no side effects beyond the returned winners.
// The random source is injected so outcomes are reproducible in tests.
type Engine struct {
	rng *rand.Rand
	log *logger.Logger
	now func() time.Time
}

func NewEngine(rng *rand.Rand, log *logger.Logger) *Engine {
	return &Engine{
		rng: rng,
		log: log,
		now: time.Now,
	}
}

// Distribute processes prizes strictly in ascending tier order. Winners of
// a tier are pruned from the pool before the next tier is processed; unless
// the raffle allows multiple wins, every remaining ticket of a winning user
// is pruned with them.
func (e *Engine) Distribute(raffle *models.Raffle, eligible []*models.RaffleTicket, prizes []*models.RafflePrize) ([]*models.RaffleWinner, error) {
	pool := make([]*models.RaffleTicket, len(eligible))
	copy(pool, eligible)

	sorted := make([]*models.RafflePrize, len(prizes))
	copy(sorted, prizes)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Tier < sorted[j].Tier })

	var winners []*models.RaffleWinner
	for _, prize := range sorted {
		toSelect := prize.RemainingQuantity()
		if toSelect > len(pool) {
			toSelect = len(pool)
		}
		if toSelect == 0 {
			e.warnf("no winners selectable for prize %s (remaining=%d pool=%d)",
				prize.Name, prize.RemainingQuantity(), len(pool))
			continue
		}

		selected, err := e.selectWinners(raffle.WinnerSelectionMethod, pool, prize, toSelect)
		if err != nil {
			return nil, err
		}

		wonAt := e.now()
		for _, ticket := range selected {
			winners = append(winners, e.newWinner(raffle, prize, ticket, wonAt))
		}

		pool = prune(pool, selected, raffle.AllowsMultipleWins())
	}

	return winners, nil
}

func (e *Engine) selectWinners(method models.SelectionMethod, pool []*models.RaffleTicket, prize *models.RafflePrize, n int) ([]*models.RaffleTicket, error) {
	switch method {
	case models.SelectionRandom, "":
		return e.selectRandom(pool, n), nil
	case models.SelectionProbability:
		return e.selectByProbability(pool, prize.WinningProbability, n), nil
	case models.SelectionFCFS:
		return selectFirstComeFirstServed(pool, n), nil
	case models.SelectionWeighted:
		return e.selectWeighted(pool, n), nil
	default:
		return nil, fmt.Errorf("unknown winner selection method: %s", method)
	}
}

// selectRandom takes the first n of a uniform shuffle; every ticket has
// equal win probability.
func (e *Engine) selectRandom(pool []*models.RaffleTicket, n int) []*models.RaffleTicket {
	shuffled := make([]*models.RaffleTicket, len(pool))
	copy(shuffled, pool)
	e.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	return shuffled[:n]
}

// selectByProbability rolls every ticket independently against the prize's
// winning probability. A shortfall is filled by random selection over the
// remaining pool so a prize is never under-awarded while eligible tickets
// exist.
func (e *Engine) selectByProbability(pool []*models.RaffleTicket, probability float64, n int) []*models.RaffleTicket {
	var selected []*models.RaffleTicket
	remaining := make([]*models.RaffleTicket, 0, len(pool))

	for _, ticket := range pool {
		if len(selected) < n && e.rng.Float64() < probability {
			selected = append(selected, ticket)
		} else {
			remaining = append(remaining, ticket)
		}
	}

	if shortfall := n - len(selected); shortfall > 0 && len(remaining) > 0 {
		if shortfall > len(remaining) {
			shortfall = len(remaining)
		}
		selected = append(selected, e.selectRandom(remaining, shortfall)...)
	}

	return selected
}

// selectFirstComeFirstServed rewards early entry: oldest tickets win.
func selectFirstComeFirstServed(pool []*models.RaffleTicket, n int) []*models.RaffleTicket {
	byAge := make([]*models.RaffleTicket, len(pool))
	copy(byAge, pool)
	sort.SliceStable(byAge, func(i, j int) bool {
		return byAge[i].CreatedAt.Before(byAge[j].CreatedAt)
	})

	return byAge[:n]
}

// selectWeighted draws without replacement proportional to each ticket's
// source weight: pick a uniform value below the total remaining weight,
// walk the pool accumulating weight until it is exceeded, remove that
// ticket, repeat.
func (e *Engine) selectWeighted(pool []*models.RaffleTicket, n int) []*models.RaffleTicket {
	remaining := make([]*models.RaffleTicket, len(pool))
	copy(remaining, pool)

	totalWeight := 0.0
	for _, ticket := range remaining {
		totalWeight += ticket.SourceType.SourceWeight()
	}

	selected := make([]*models.RaffleTicket, 0, n)
	for len(selected) < n && len(remaining) > 0 {
		target := e.rng.Float64() * totalWeight

		idx := len(remaining) - 1
		acc := 0.0
		for i, ticket := range remaining {
			acc += ticket.SourceType.SourceWeight()
			if target < acc {
				idx = i
				break
			}
		}

		picked := remaining[idx]
		selected = append(selected, picked)
		totalWeight -= picked.SourceType.SourceWeight()
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}

	return selected
}

func (e *Engine) newWinner(raffle *models.Raffle, prize *models.RafflePrize, ticket *models.RaffleTicket, wonAt time.Time) *models.RaffleWinner {
	return &models.RaffleWinner{
		RaffleID:         raffle.ID,
		PrizeID:          prize.ID,
		TicketID:         ticket.ID,
		UserID:           ticket.UserID,
		Status:           models.WinnerStatusPendingClaim,
		PrizeName:        prize.Name,
		PrizeValue:       prize.Value,
		WonAt:            wonAt,
		ClaimDeadline:    wonAt.Add(prize.Type.ClaimWindow()),
		VerificationCode: utils.GenerateVerificationCode(),
		IsVerified:       !prize.RequiresVerification,
	}
}

// prune removes the winning tickets from the pool, and with them every
// other ticket of a winning user when the raffle forbids multiple wins.
func prune(pool, selected []*models.RaffleTicket, allowMultipleWins bool) []*models.RaffleTicket {
	wonTickets := make(map[primitive.ObjectID]bool, len(selected))
	wonUsers := make(map[primitive.ObjectID]bool, len(selected))
	for _, ticket := range selected {
		wonTickets[ticket.ID] = true
		wonUsers[ticket.UserID] = true
	}

	kept := pool[:0]
	for _, ticket := range pool {
		if wonTickets[ticket.ID] {
			continue
		}
		if !allowMultipleWins && wonUsers[ticket.UserID] {
			continue
		}
		kept = append(kept, ticket)
	}

	return kept
}

func (e *Engine) warnf(format string, args ...interface{}) {
	if e.log != nil {
		e.log.Warnf(format, args...)
	}
}
