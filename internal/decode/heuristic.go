package decode

import (
	"math"
	"math/big"
	"sort"
)

// The event layout is not self-describing, so fields are recovered by
// ranked heuristics over candidate (word index, decimal scale) pairs.
// Bounds come from the presale's known contribution and lock-term limits;
// they were reverse-engineered from live logs and need re-validation if
// the contract is upgraded.
const (
	// maxSlots bounds the search window; fields appear in the early words
	// and trailing data produces false positives.
	maxSlots = 8

	usdMin = 400
	usdMax = 30000

	lockMin = 0
	lockMax = 12
)

// usdScales are the decimal conventions tried per word, in preference
// order: stable-token (6) amounts are far more common in this event than
// native-token (18) ones.
var usdScales = [...]int{6, 18}

// USDPick is the result of USD disambiguation. Found=false means no word
// decodes to a plausible contribution; the event is presumed to be paid on
// another rail and is left to native-transfer reconciliation.
type USDPick struct {
	Amount   float64
	Slot     int
	Decimals int
	Found    bool
}

// LockPick is the result of lock-duration disambiguation. Found=false
// drops the owning event: a payment without a determinable lock term is
// not a valid participation record.
type LockPick struct {
	Months int
	Slot   int
	Found  bool
}

type usdCandidate struct {
	pref     int // 0 for 6-decimal interpretations, 1 for 18-decimal
	slot     int
	decimals int
	amount   float64
}

type lockCandidate struct {
	penalty int // 1 for values 0 and 1, which collide with flag fields
	slot    int
	months  int
}

// usdLess is the USD tie-break policy: preferred scale first, then the
// earliest word.
func usdLess(a, b usdCandidate) bool {
	if a.pref != b.pref {
		return a.pref < b.pref
	}
	return a.slot < b.slot
}

// lockLess is the lock tie-break policy: penalized values last, then the
// earliest word.
func lockLess(a, b lockCandidate) bool {
	if a.penalty != b.penalty {
		return a.penalty < b.penalty
	}
	return a.slot < b.slot
}

// PickUSD selects the most plausible USD contribution from the early words.
func PickUSD(words []*big.Int) USDPick {
	var candidates []usdCandidate

	for slot := 0; slot < len(words) && slot < maxSlots; slot++ {
		for _, decimals := range usdScales {
			amount := scaleToFloat(words[slot], decimals)
			if amount < usdMin || amount > usdMax {
				continue
			}
			pref := 0
			if decimals != usdScales[0] {
				pref = 1
			}
			candidates = append(candidates, usdCandidate{
				pref:     pref,
				slot:     slot,
				decimals: decimals,
				amount:   amount,
			})
		}
	}

	if len(candidates) == 0 {
		return USDPick{}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return usdLess(candidates[i], candidates[j])
	})

	best := candidates[0]
	return USDPick{
		Amount:   round2(best.amount),
		Slot:     best.slot,
		Decimals: best.decimals,
		Found:    true,
	}
}

// PickLockMonths selects the most plausible lock duration from the early
// words, read as plain integers.
func PickLockMonths(words []*big.Int) LockPick {
	var candidates []lockCandidate

	for slot := 0; slot < len(words) && slot < maxSlots; slot++ {
		w := words[slot]
		if !w.IsInt64() {
			continue
		}
		months := w.Int64()
		if months < lockMin || months > lockMax {
			continue
		}
		penalty := 0
		if months == 0 || months == 1 {
			penalty = 1
		}
		candidates = append(candidates, lockCandidate{
			penalty: penalty,
			slot:    slot,
			months:  int(months),
		})
	}

	if len(candidates) == 0 {
		return LockPick{}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return lockLess(candidates[i], candidates[j])
	})

	best := candidates[0]
	return LockPick{Months: best.months, Slot: best.slot, Found: true}
}

func scaleToFloat(v *big.Int, decimals int) float64 {
	denom := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	out, _ := new(big.Float).Quo(
		new(big.Float).SetInt(v),
		new(big.Float).SetInt(denom),
	).Float64()
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
