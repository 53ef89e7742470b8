package wallet

import (
	"fmt"
	"math"

	"github.com/Trivium-tech/trivium-wallet/config"
	"github.com/Trivium-tech/trivium-wallet/internal/log"
	"github.com/Trivium-tech/trivium-wallet/pkg/tx"
	"github.com/Trivium-tech/trivium-wallet/pkg/types"
)

// Builder assembles and signs transactions against an immutable wallet
// snapshot. It never mutates the snapshot and takes no locks; a build
// completes or fails atomically, and a failed build never exposes a
// partially signed transaction.
type Builder struct {
	params *config.Params
	snap   *Snapshot
}

// NewBuilder returns a builder over the given protocol parameters and
// wallet snapshot.
func NewBuilder(params *config.Params, snap *Snapshot) *Builder {
	return &Builder{params: params, snap: snap}
}

// Build runs the pipeline: validate the request, check the gas budget,
// select inputs, assemble outputs, then sign inputs and the whole
// transaction. Failures carry the phase inside a *BuildError.
func (b *Builder) Build(req *PaymentRequest) (*tx.Transaction, error) {
	defer log.Benchmark("build")()

	fail := func(state BuildState, err error) (*tx.Transaction, error) {
		log.Builder.Debug().Stringer("state", state).Err(err).Msg("build failed")
		return nil, &BuildError{State: state, Err: err}
	}

	if err := b.validate(req); err != nil {
		return fail(StateValidating, err)
	}
	if err := b.checkGas(req); err != nil {
		return fail(StateValidating, err)
	}

	consumed, change, err := b.selectInputs(req)
	if err != nil {
		return fail(StateSelectingInputs, err)
	}

	trans, err := b.assemble(req, consumed, change)
	if err != nil {
		return fail(StateAssemblingOutputs, err)
	}

	if err := b.sign(trans, consumed); err != nil {
		return fail(StateSigning, err)
	}

	log.Builder.Debug().
		Str("id", trans.ID).
		Int("inputs", len(trans.Inputs)).
		Int("outputs", len(trans.Outputs)).
		Stringer("class", trans.Class).
		Msg("transaction built")
	return trans, nil
}

// validate enforces every structural rule before any cryptography runs.
func (b *Builder) validate(req *PaymentRequest) error {
	if req == nil {
		return fmt.Errorf("%w: nil request", ErrStructural)
	}
	if len(req.Sources) == 0 {
		return fmt.Errorf("%w: no source addresses", ErrStructural)
	}
	if req.GasPolicy > GasSpread {
		return fmt.Errorf("%w: unknown gas policy %d", ErrStructural, req.GasPolicy)
	}
	if !finite(req.GasMint) || req.GasMint < 0 {
		return fmt.Errorf("%w: gas mint must be non-negative and finite, got %v", ErrStructural, req.GasMint)
	}
	if !finite(req.Total) {
		return fmt.Errorf("%w: total must be finite", ErrStructural)
	}

	if len(req.Payees) > b.params.MaxOutputs {
		return fmt.Errorf("%w: %d payees, output limit is %d", ErrStructural, len(req.Payees), b.params.MaxOutputs)
	}
	for i, p := range req.Payees {
		if !p.Address.Valid() || p.Address.Empty() {
			return fmt.Errorf("%w: payee %d: malformed address %q", ErrStructural, i, p.Address)
		}
		if !p.Currency.Valid() {
			return fmt.Errorf("%w: payee %d: invalid currency %d", ErrStructural, i, p.Currency)
		}
		if !finite(p.Amount) || p.Amount <= 0 {
			return fmt.Errorf("%w: payee %d: amount must be positive and finite, got %v", ErrStructural, i, p.Amount)
		}
		if !finite(p.Interest) || p.Interest < 0 {
			return fmt.Errorf("%w: payee %d: interest must be non-negative and finite, got %v", ErrStructural, i, p.Interest)
		}
	}

	// Sources must exist in the snapshot, once each.
	seen := make(map[types.Address]struct{}, len(req.Sources))
	for _, src := range req.Sources {
		if b.snap.Entry(src) == nil {
			return fmt.Errorf("%w: source %s not in snapshot", ErrAddressNotFound, src)
		}
		if _, ok := seen[src]; ok {
			return fmt.Errorf("%w: source %s listed twice", ErrStructural, src)
		}
		seen[src] = struct{}{}
	}

	// Change addresses must exist and match the currency they serve.
	for c, addr := range req.ChangeAddrs {
		if !c.Valid() {
			return fmt.Errorf("%w: change designated for invalid currency %d", ErrStructural, c)
		}
		entry := b.snap.Entry(addr)
		if entry == nil {
			return fmt.Errorf("%w: change address %s not in snapshot", ErrAddressNotFound, addr)
		}
		if entry.Currency != c {
			return fmt.Errorf("%w: change address %s holds currency %s but serves %s",
				ErrStructural, addr, entry.Currency, c)
		}
	}

	if req.CrossChain || req.Pledge {
		if err := b.validateRestricted(req); err != nil {
			return err
		}
	}

	// Declared amounts must equal the payee sums plus any gas mint,
	// with no silent truncation.
	var want types.CurrencyAmounts
	for _, p := range req.Payees {
		want.Add(p.Currency, p.Amount)
	}
	want.Add(types.CurrencyPrimary, req.GasMint)
	if want != req.Amounts {
		return fmt.Errorf("%w: declared amounts %v do not match payee sums plus gas mint %v",
			ErrStructural, req.Amounts, want)
	}
	if want.IsZero() {
		return fmt.Errorf("%w: nothing to pay", ErrStructural)
	}

	var total float64
	for _, c := range types.Currencies() {
		total += req.Amounts.Get(c) * b.params.Rate(c)
	}
	if total != req.Total {
		return fmt.Errorf("%w: declared total %v does not match rated amount sum %v",
			ErrStructural, req.Total, total)
	}
	return nil
}

// validateRestricted enforces the extra rules shared by the cross-chain
// and pledge transaction classes.
func (b *Builder) validateRestricted(req *PaymentRequest) error {
	kind := "cross-chain"
	if req.Pledge {
		kind = "pledge"
	}

	if len(req.Payees) != 1 {
		return fmt.Errorf("%w: %s transaction requires exactly one payee, got %d",
			ErrStructural, kind, len(req.Payees))
	}
	if req.Payees[0].Currency != types.CurrencyPrimary {
		return fmt.Errorf("%w: %s payee currency must be primary, got %s",
			ErrStructural, kind, req.Payees[0].Currency)
	}
	for _, src := range req.Sources {
		if e := b.snap.Entry(src); e.Currency != types.CurrencyPrimary {
			return fmt.Errorf("%w: %s source %s must hold primary currency, holds %s",
				ErrStructural, kind, src, e.Currency)
		}
	}
	if len(req.ChangeAddrs) != 1 {
		return fmt.Errorf("%w: %s transaction requires exactly one change address, got %d",
			ErrStructural, kind, len(req.ChangeAddrs))
	}
	if _, ok := req.ChangeAddrs[types.CurrencyPrimary]; !ok {
		return fmt.Errorf("%w: %s change address must serve the primary currency", ErrStructural, kind)
	}

	if req.CrossChain {
		if b.snap.Account.Org == "" {
			return fmt.Errorf("%w: cross-chain transaction requires an organization", ErrStructural)
		}
		if len(req.Sources) != 1 {
			return fmt.Errorf("%w: cross-chain transaction requires exactly one source address, got %d",
				ErrStructural, len(req.Sources))
		}
	}
	return nil
}

// checkGas validates the gas budget over the originally selected source
// set, before optimization can narrow it.
func (b *Builder) checkGas(req *PaymentRequest) error {
	available := b.snap.TotalInterest(req.Sources)
	minted := req.GasMint * b.params.GasRate
	need := b.params.BaseTxGas
	for _, p := range req.Payees {
		need += p.Interest
	}

	if available+minted < need {
		if req.GasMint > 0 {
			return fmt.Errorf("%w: need %v, have %v even after minting %v",
				ErrInsufficientGas, need, available+minted, minted)
		}
		return fmt.Errorf("%w: need %v, have %v without minting", ErrInsufficientGas, need, available)
	}
	return nil
}

// selectInputs narrows the source set, then selects records per currency
// with nonzero demand.
func (b *Builder) selectInputs(req *PaymentRequest) ([]ConsumedRecord, types.CurrencyAmounts, error) {
	var change types.CurrencyAmounts

	used := OptimizeAddresses(b.snap, req.Sources, req.Amounts, b.params)
	log.Builder.Debug().
		Int("candidates", len(req.Sources)).
		Int("used", len(used)).
		Msg("source set optimized")

	var consumed []ConsumedRecord
	for _, c := range types.Currencies() {
		target := req.Amounts.Get(c)
		if target <= 0 {
			continue
		}
		sel, err := SelectRecords(b.snap, used, c, target, req.ChangeAddrs[c])
		if err != nil {
			return nil, change, err
		}
		consumed = append(consumed, sel.Consumed...)
		change.Add(c, sel.Change)
	}

	if len(consumed) > b.params.MaxInputs {
		return nil, change, fmt.Errorf("%w: %d inputs selected, limit is %d",
			ErrStructural, len(consumed), b.params.MaxInputs)
	}
	return consumed, change, nil
}

// assemble materializes the transaction: payee outputs in request order,
// an optional pay-for-gas pseudo-output, change outputs in currency
// order, and one input per consumed record with its origin hash already
// attached.
func (b *Builder) assemble(req *PaymentRequest, consumed []ConsumedRecord, change types.CurrencyAmounts) (*tx.Transaction, error) {
	orgIssued := b.snap.Account.Org != ""

	outs := make([]tx.Output, 0, len(req.Payees)+int(types.NumCurrencies)+1)
	for _, p := range req.Payees {
		outs = append(outs, tx.Output{
			Address:    p.Address,
			Value:      p.Amount,
			Currency:   p.Currency,
			Group:      p.Group,
			PubKey:     p.PubKey,
			Interest:   p.Interest,
			CrossChain: req.CrossChain,
			OrgIssued:  orgIssued,
		})
	}
	if req.GasMint > 0 {
		outs = append(outs, tx.Output{
			Value:    req.GasMint,
			Currency: types.CurrencyPrimary,
			PayGas:   true,
		})
	}

	firstChange := len(outs)
	for _, c := range types.Currencies() {
		v := change.Get(c)
		if v <= 0 {
			continue
		}
		addr := req.ChangeAddrs[c]
		outs = append(outs, tx.Output{
			Address:  addr,
			Value:    v,
			Currency: c,
			PubKey:   b.snap.Entry(addr).Keys.Pub,
		})
	}

	if len(outs) > b.params.MaxOutputs {
		return nil, fmt.Errorf("%w: %d outputs assembled, limit is %d", ErrStructural, len(outs), b.params.MaxOutputs)
	}

	b.distributeGas(req, outs, firstChange)

	ins := make([]tx.Input, len(consumed))
	for i, cr := range consumed {
		h, err := cr.Record.Origin.Hash()
		if err != nil {
			return nil, fmt.Errorf("%w: origin %s:%d: %v", ErrStructural, cr.Record.PrevTx, cr.Record.PrevIndex, err)
		}
		ins[i] = tx.Input{
			PrevTx:     cr.Record.PrevTx,
			PrevIndex:  cr.Record.PrevIndex,
			Address:    cr.Owner,
			OutputHash: h,
		}
	}

	trans := &tx.Transaction{
		Class:   b.classify(req),
		Total:   req.Total,
		Amounts: req.Amounts,
		Org:     b.snap.Account.Org,
		Inputs:  ins,
		Outputs: outs,
		Payload: req.Payload,
	}
	if err := trans.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStructural, err)
	}
	return trans, nil
}

// classify picks the class tag: pledge and cross-chain take priority,
// an account without an organization marks its payments, everything
// else is a default payment.
func (b *Builder) classify(req *PaymentRequest) tx.Class {
	switch {
	case req.Pledge:
		return tx.ClassPledge
	case req.CrossChain:
		return tx.ClassCrossChain
	case b.snap.Account.Org == "":
		return tx.ClassNoOrg
	default:
		return tx.ClassDefault
	}
}

// distributeGas applies the request's leftover-gas policy to the
// assembled outputs. Leftover is whatever the sources' accrued interest
// plus minted gas exceeds the budget by.
func (b *Builder) distributeGas(req *PaymentRequest, outs []tx.Output, firstChange int) {
	leftover := b.snap.TotalInterest(req.Sources) + req.GasMint*b.params.GasRate - b.params.BaseTxGas
	for _, p := range req.Payees {
		leftover -= p.Interest
	}
	if leftover <= 0 {
		return
	}

	switch req.GasPolicy {
	case GasToChange:
		if firstChange < len(outs) {
			outs[firstChange].Interest += leftover
			return
		}
		fallthrough
	case GasSpread:
		if len(req.Payees) == 0 {
			return
		}
		share := leftover / float64(len(req.Payees))
		for i := range req.Payees {
			outs[i].Interest += share
		}
	}
}

// sign computes the identifier and size, then signs every input with its
// address-level key and the whole transaction with the account key.
// Inputs are signed strictly sequentially; each step loads its own key
// and zeroes it before the next.
func (b *Builder) sign(trans *tx.Transaction, consumed []ConsumedRecord) error {
	id, err := trans.ComputeID()
	if err != nil {
		return fmt.Errorf("%w: compute id: %v", ErrSigning, err)
	}
	trans.ID = id

	size, err := trans.ComputeSize()
	if err != nil {
		return fmt.Errorf("%w: compute size: %v", ErrSigning, err)
	}
	trans.Size = size

	for i := range trans.Inputs {
		entry := b.snap.Entry(trans.Inputs[i].Address)
		if entry == nil {
			return fmt.Errorf("%w: no key for address %s", ErrSigning, trans.Inputs[i].Address)
		}
		key, err := entry.Keys.Signer()
		if err != nil {
			return fmt.Errorf("%w: address %s: %v", ErrSigning, trans.Inputs[i].Address, err)
		}
		err = trans.Inputs[i].Sign(&consumed[i].Record.Origin, key)
		key.Zero()
		if err != nil {
			return fmt.Errorf("%w: input %d: %v", ErrSigning, i, err)
		}
	}

	key, err := b.snap.Account.Keys.Signer()
	if err != nil {
		return fmt.Errorf("%w: account key: %v", ErrSigning, err)
	}
	err = trans.Sign(key)
	key.Zero()
	if err != nil {
		return fmt.Errorf("%w: whole transaction: %v", ErrSigning, err)
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
