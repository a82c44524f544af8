package brackets

import (
	"errors"
	"math"
)

var ErrInsufficientTeams = errors.New("not enough teams to build a single elimination bracket (minimum 2)")

// Pairing is one planned match of a round. Team2ID is nil when the pairing
// is a bye, in which case Team1ID advances automatically.
type Pairing struct {
	Team1ID      int
	Team2ID      *int
	OrderInRound int
}

func (p Pairing) IsBye() bool {
	return p.Team2ID == nil
}

// NumRounds returns the total number of rounds a bracket of n teams plays
// when winners are paired round by round: ceil(log2(n)).
func NumRounds(n int) int {
	if n < 2 {
		return 0
	}
	return int(math.Ceil(math.Log2(float64(n))))
}

// BuildFirstRound pairs the given teams into round 1. The slice order is the
// seeding order and must already be deterministic (registration creation
// order at the call site). With an odd team count the first seed receives a
// bye; every other team is paired sequentially. Byes come first in the round
// ordering so that a bye winner meets the first real-match winner next round.
func BuildFirstRound(teamIDs []int) ([]Pairing, error) {
	if len(teamIDs) < 2 {
		return nil, ErrInsufficientTeams
	}
	return pairSequential(teamIDs), nil
}

// PairWinners builds the pairings of the next round from the winners of the
// previous one, given in bracket order. An odd leftover winner receives an
// auto-bye. The same sequential policy as round 1 applies, so repeated
// application converges to a single final match in NumRounds(n) rounds.
func PairWinners(winnerIDs []int) []Pairing {
	return pairSequential(winnerIDs)
}

func pairSequential(ids []int) []Pairing {
	pairings := make([]Pairing, 0, (len(ids)+1)/2)
	order := 1

	rest := ids
	if len(ids)%2 != 0 {
		// Odd bracket: the first seed sits out this round.
		pairings = append(pairings, Pairing{Team1ID: ids[0], OrderInRound: order})
		order++
		rest = ids[1:]
	}

	for i := 0; i+1 < len(rest); i += 2 {
		t2 := rest[i+1]
		pairings = append(pairings, Pairing{Team1ID: rest[i], Team2ID: &t2, OrderInRound: order})
		order++
	}
	return pairings
}
