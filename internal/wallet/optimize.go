package wallet

import (
	"sort"

	"github.com/Trivium-tech/trivium-wallet/config"
	"github.com/Trivium-tech/trivium-wallet/pkg/types"
)

// OptimizeAddresses narrows a caller-selected source set to a smaller
// subset whose balances still cover every required currency amount,
// avoiding unnecessary inputs and signatures.
//
// Each address gets a composite score: its balance in every currency
// with nonzero demand, weighted by that currency's exchange rate.
// Addresses are taken greedily in descending score order (stable, so
// ties keep caller order) while some currency demand is unmet; an
// address is accepted only if it contributes positive balance to an
// unmet currency. If demand remains after exhausting all candidates,
// the original selection is returned untouched and the selector
// surfaces the real shortfall.
//
// This is a greedy approximation, not an optimal subset-sum solution;
// adversarial balance splits can keep more addresses than necessary.
func OptimizeAddresses(snap *Snapshot, addrs []types.Address, demand types.CurrencyAmounts, params *config.Params) []types.Address {
	type candidate struct {
		addr  types.Address
		entry *AddressEntry
		score float64
	}

	cands := make([]candidate, 0, len(addrs))
	for _, a := range addrs {
		c := candidate{addr: a, entry: snap.Entry(a)}
		if c.entry != nil && demand.Get(c.entry.Currency) > 0 {
			c.score = c.entry.Balance.Unspent * params.Rate(c.entry.Currency)
		}
		cands = append(cands, c)
	}

	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].score > cands[j].score
	})

	remaining := demand
	used := make([]types.Address, 0, len(cands))
	for _, c := range cands {
		if demandMet(remaining) {
			break
		}
		if c.entry == nil || c.entry.Balance.Unspent <= 0 {
			continue
		}
		if remaining.Get(c.entry.Currency) <= 0 {
			continue
		}
		used = append(used, c.addr)
		remaining.Add(c.entry.Currency, -c.entry.Balance.Unspent)
	}

	if !demandMet(remaining) {
		return addrs
	}
	return used
}

// demandMet reports whether every per-currency demand has dropped to
// zero or below.
func demandMet(remaining types.CurrencyAmounts) bool {
	for _, v := range remaining {
		if v > 0 {
			return false
		}
	}
	return true
}
