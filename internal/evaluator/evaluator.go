package evaluator

import (
	"fmt"
	"sort"

	"github.com/lox/cardroom/internal/deck"
)

// Category enumerates poker hand categories from weakest to strongest.
type Category int

const (
	HighCard Category = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

// String returns a human-readable category name
func (c Category) String() string {
	switch c {
	case HighCard:
		return "High Card"
	case Pair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	case RoyalFlush:
		return "Royal Flush"
	default:
		return "Unknown"
	}
}

// categoryBand is the width of each category's strength band. The
// category lives in the hundred-thousands digits and the remainder
// encodes rank and kicker tie-breaks, so any two hands compare with a
// single integer comparison.
const categoryBand = 100000

// Result is the outcome of evaluating a hand.
type Result struct {
	Category    Category
	Strength    int
	Description string
}

// Evaluate finds the best 5-card poker hand from 5 to 7 cards by
// examining every 5-card subset and returning the maximum by
// Strength. At most C(7,5) = 21 subsets are examined.
func Evaluate(cards []deck.Card) (Result, error) {
	if len(cards) < 5 || len(cards) > 7 {
		return Result{}, fmt.Errorf("evaluate: need 5 to 7 cards, got %d", len(cards))
	}

	var best Result
	var subset [5]deck.Card
	n := len(cards)
	for a := 0; a < n-4; a++ {
		for b := a + 1; b < n-3; b++ {
			for c := b + 1; c < n-2; c++ {
				for d := c + 1; d < n-1; d++ {
					for e := d + 1; e < n; e++ {
						subset[0] = cards[a]
						subset[1] = cards[b]
						subset[2] = cards[c]
						subset[3] = cards[d]
						subset[4] = cards[e]
						if r := evaluate5(subset); r.Strength > best.Strength {
							best = r
						}
					}
				}
			}
		}
	}
	return best, nil
}

// evaluate5 ranks exactly five cards.
func evaluate5(cards [5]deck.Card) Result {
	ranks := make([]int, 5)
	flush := true
	for i, c := range cards {
		ranks[i] = c.Value()
		if c.Suit != cards[0].Suit {
			flush = false
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ranks)))

	straightHigh := straightHighCard(ranks)

	if flush && straightHigh > 0 {
		if straightHigh == int(deck.Ace) {
			return Result{
				Category:    RoyalFlush,
				Strength:    int(RoyalFlush) * categoryBand,
				Description: "Royal Flush",
			}
		}
		return Result{
			Category:    StraightFlush,
			Strength:    int(StraightFlush)*categoryBand + straightIndex(straightHigh),
			Description: fmt.Sprintf("Straight Flush, %s high", deck.Rank(straightHigh)),
		}
	}

	// Group ranks by multiplicity: groups[0] is the most repeated rank,
	// ties broken by rank, descending.
	counts := map[int]int{}
	for _, r := range ranks {
		counts[r]++
	}
	type group struct{ rank, count int }
	groups := make([]group, 0, 5)
	for r, n := range counts {
		groups = append(groups, group{r, n})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}
		return groups[i].rank > groups[j].rank
	})

	switch {
	case groups[0].count == 4:
		quad := groups[0].rank
		kicker := groups[1].rank
		return Result{
			Category:    FourOfAKind,
			Strength:    int(FourOfAKind)*categoryBand + ordinal(quad, nil)*12 + ordinal(kicker, []int{quad}),
			Description: fmt.Sprintf("Four of a Kind, %s", deck.Rank(quad).Name()),
		}
	case groups[0].count == 3 && groups[1].count == 2:
		trip, pair := groups[0].rank, groups[1].rank
		return Result{
			Category:    FullHouse,
			Strength:    int(FullHouse)*categoryBand + ordinal(trip, nil)*12 + ordinal(pair, []int{trip}),
			Description: fmt.Sprintf("Full House, %s over %s", deck.Rank(trip).Name(), deck.Rank(pair).Name()),
		}
	case flush:
		return Result{
			Category:    Flush,
			Strength:    int(Flush)*categoryBand + comboIndex(ranks, nil),
			Description: fmt.Sprintf("Flush, %s high", deck.Rank(ranks[0])),
		}
	case straightHigh > 0:
		return Result{
			Category:    Straight,
			Strength:    int(Straight)*categoryBand + straightIndex(straightHigh),
			Description: fmt.Sprintf("Straight, %s high", deck.Rank(straightHigh)),
		}
	case groups[0].count == 3:
		trip := groups[0].rank
		kickers := []int{groups[1].rank, groups[2].rank}
		return Result{
			Category:    ThreeOfAKind,
			Strength:    int(ThreeOfAKind)*categoryBand + ordinal(trip, nil)*66 + comboIndex(kickers, []int{trip}),
			Description: fmt.Sprintf("Three of a Kind, %s", deck.Rank(trip).Name()),
		}
	case groups[0].count == 2 && groups[1].count == 2:
		hi, lo := groups[0].rank, groups[1].rank
		kicker := groups[2].rank
		return Result{
			Category:    TwoPair,
			Strength:    int(TwoPair)*categoryBand + comboIndex([]int{hi, lo}, nil)*11 + ordinal(kicker, []int{hi, lo}),
			Description: fmt.Sprintf("Two Pair, %s and %s", deck.Rank(hi).Name(), deck.Rank(lo).Name()),
		}
	case groups[0].count == 2:
		pair := groups[0].rank
		kickers := []int{groups[1].rank, groups[2].rank, groups[3].rank}
		return Result{
			Category:    Pair,
			Strength:    int(Pair)*categoryBand + ordinal(pair, nil)*220 + comboIndex(kickers, []int{pair}),
			Description: fmt.Sprintf("Pair of %s", deck.Rank(pair).Name()),
		}
	default:
		return Result{
			Category:    HighCard,
			Strength:    int(HighCard)*categoryBand + comboIndex(ranks, nil),
			Description: fmt.Sprintf("High Card, %s", deck.Rank(ranks[0])),
		}
	}
}

// straightHighCard returns the high card of a straight formed by the
// five descending ranks, or 0 if there is none. The wheel (A-2-3-4-5)
// ranks as a 5-high straight, strictly below 6-high.
func straightHighCard(desc []int) int {
	run := true
	for i := 1; i < 5; i++ {
		if desc[i] != desc[i-1]-1 {
			run = false
			break
		}
	}
	if run {
		return desc[0]
	}
	if desc[0] == int(deck.Ace) && desc[1] == 5 && desc[2] == 4 && desc[3] == 3 && desc[4] == 2 {
		return 5
	}
	return 0
}

// straightIndex orders straight high cards 5 (wheel) through Ace.
func straightIndex(high int) int {
	return high - 5
}

// ordinal maps a rank to its ascending position among the ranks not in
// excluded, so kicker values stay dense.
func ordinal(rank int, excluded []int) int {
	ord := rank - 2
	for _, ex := range excluded {
		if ex < rank {
			ord--
		}
	}
	return ord
}

// comboIndex maps a descending set of distinct ranks to its position
// in the combinatorial number system, which preserves descending
// lexicographic order. Excluded ranks are removed from the alphabet
// first so pair and trip kicker sets stay dense.
func comboIndex(desc []int, excluded []int) int {
	idx := 0
	k := len(desc)
	for i, r := range desc {
		idx += binomial(ordinal(r, excluded), k-i)
	}
	return idx
}

func binomial(n, k int) int {
	if n < k {
		return 0
	}
	result := 1
	for i := 0; i < k; i++ {
		result = result * (n - i) / (i + 1)
	}
	return result
}
