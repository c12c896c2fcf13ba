// Package tradeengine is the concurrent session registry and state machine
// that arbitrates a two-party token-swap negotiation: per-participant offer
// bundles, acceptance, and the hand-off to the transaction builder.
package tradeengine

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/klingon-exchange/trade-with-me/internal/tokencache"
	"github.com/klingon-exchange/trade-with-me/internal/txbuilder"
	"github.com/klingon-exchange/trade-with-me/internal/wire"
	"github.com/klingon-exchange/trade-with-me/pkg/logging"
	"github.com/klingon-exchange/trade-with-me/pkg/money"
)

// Engine is the registry of all active trade sessions. A single mutex
// serializes every mutation; critical sections are synchronous and never
// perform I/O, so they cannot block progress of other sessions.
type Engine struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*session

	cache   *tokencache.Cache
	builder *txbuilder.Builder
	log     *logging.Logger
}

// New returns an empty Engine. cache supplies per-user balance ceilings;
// builder assembles the settlement transaction once a trade is accepted.
func New(cache *tokencache.Cache, builder *txbuilder.Builder, log *logging.Logger) *Engine {
	if log == nil {
		log = logging.Default()
	}
	return &Engine{
		sessions: make(map[uuid.UUID]*session),
		cache:    cache,
		builder:  builder,
		log:      log.Component("tradeengine"),
	}
}

// AddClient registers outbound as the connection's push-channel sink,
// lazily creating the session with default state if this is its first
// client.
func (e *Engine) AddClient(sessionID, connectionID uuid.UUID, outbound chan<- wire.OutboundMessage) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess, ok := e.sessions[sessionID]
	if !ok {
		sess = newSession()
		e.sessions[sessionID] = sess
	}
	sess.clients[connectionID] = outbound
}

// RemoveClient unregisters a connection. It is a no-op if the session or
// connection is not found; sessions are never deleted on last-disconnect
// (a known, documented policy gap).
func (e *Engine) RemoveClient(sessionID, connectionID uuid.UUID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess, ok := e.sessions[sessionID]
	if !ok {
		return
	}
	delete(sess.clients, connectionID)
}

// BroadcastCurrentState snapshots the session's state and enqueues a
// TradeStateUpdate to every registered connection using a non-blocking
// send. Slow or disconnected receivers silently drop the message.
func (e *Engine) BroadcastCurrentState(sessionID uuid.UUID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.broadcastLocked(sessionID)
}

func (e *Engine) broadcastLocked(sessionID uuid.UUID) {
	sess, ok := e.sessions[sessionID]
	if !ok {
		return
	}

	update := wire.NewTradeStateUpdate(offersToWire(sess.state.Offers), sess.state.UserActed, string(sess.state.Status))
	for connectionID, outbound := range sess.clients {
		select {
		case outbound <- update:
		default:
			e.log.Warn("dropped trade state update, outbound channel full", "session", sessionID, "connection", connectionID)
		}
	}
}

func offersToWire(offers map[string]money.OfferBundle) map[string]map[string]string {
	out := make(map[string]map[string]string, len(offers))
	for user, bundle := range offers {
		mints := make(map[string]string, len(bundle))
		for mint, amount := range bundle {
			mints[mint] = amount.String()
		}
		out[user] = mints
	}
	return out
}

// canMutate reports whether status accepts offer/withdraw mutations.
func canMutate(status Status) bool {
	return status == StatusTrading || status == StatusOneUserAccepted
}

// AddTokensOffer adds amount of mint to user's offer in session, capped at
// the user's cached available balance. A non-positive amount is an
// idempotent no-op. Any successful mutation reverts status to Trading and
// clears UserActed.
func (e *Engine) AddTokensOffer(sessionID uuid.UUID, user, mint string, amount money.Amount) error {
	if !amount.IsPositive() {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	sess, ok := e.sessions[sessionID]
	if !ok {
		return newError(KindUnknownSession, fmt.Sprintf("session %s not found", sessionID))
	}
	if !canMutate(sess.state.Status) {
		return newError(KindInvalidPhase, fmt.Sprintf("cannot offer tokens in status %s", sess.state.Status))
	}

	available := e.availableBalance(user, mint)

	next := sess.state.cloneOffers()
	bundle, userPresent := next[user]
	if !userPresent {
		if len(next) >= 2 {
			return newError(KindTooManyParties, "there are already 2 users involved in this trade")
		}
		bundle = money.NewOfferBundle()
	}

	existing := bundle[mint]
	capped := existing.Add(amount).Min(available)

	updatedBundle, err := replaceMintAmount(bundle, mint, capped)
	if err != nil {
		return err
	}
	next[user] = updatedBundle

	sess.state.Offers = next
	sess.state.Status = StatusTrading
	sess.state.UserActed = nil

	e.broadcastLocked(sessionID)
	return nil
}

// replaceMintAmount returns a copy of bundle with mint's amount set to
// amount, or with the mint key removed if amount is zero.
func replaceMintAmount(bundle money.OfferBundle, mint string, amount money.Amount) (money.OfferBundle, error) {
	if amount.IsZero() {
		if _, ok := bundle[mint]; !ok {
			return bundle, nil
		}
		next := make(money.OfferBundle, len(bundle))
		for m, a := range bundle {
			if m != mint {
				next[m] = a
			}
		}
		return next, nil
	}
	next := make(money.OfferBundle, len(bundle)+1)
	for m, a := range bundle {
		next[m] = a
	}
	next[mint] = amount
	return next, nil
}

// availableBalance returns the cached ceiling for (user, mint), or zero if
// the cache has no entry — a cache miss pins the offer ceiling to zero.
func (e *Engine) availableBalance(user, mint string) money.Amount {
	if e.cache == nil {
		return money.Zero
	}
	balances, ok := e.cache.Get(user)
	if !ok {
		return money.Zero
	}
	amount, ok := balances[mint]
	if !ok {
		return money.Zero
	}
	return amount
}

// WithdrawTokens removes amount of mint from user's offer. A non-positive
// amount is a no-op. If the withdrawal empties the mint's balance the key
// is dropped entirely, but the user's (possibly now-empty) bundle remains,
// still counting toward the two-user limit.
func (e *Engine) WithdrawTokens(sessionID uuid.UUID, user, mint string, amount money.Amount) error {
	if !amount.IsPositive() {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	sess, ok := e.sessions[sessionID]
	if !ok {
		return newError(KindUnknownSession, fmt.Sprintf("session %s not found", sessionID))
	}
	if !canMutate(sess.state.Status) {
		return newError(KindInvalidPhase, fmt.Sprintf("cannot withdraw tokens in status %s", sess.state.Status))
	}

	next := sess.state.cloneOffers()
	bundle, ok := next[user]
	if !ok {
		return newError(KindUnknownUserInSession, fmt.Sprintf("there are no tokens for %s in session state", user))
	}

	existing := bundle[mint]
	remaining := existing.Sub(amount)
	if remaining.IsNegative() {
		remaining = money.Zero
	}

	updatedBundle, err := replaceMintAmount(bundle, mint, remaining)
	if err != nil {
		return err
	}
	next[user] = updatedBundle

	sess.state.Offers = next
	sess.state.Status = StatusTrading
	sess.state.UserActed = nil

	e.broadcastLocked(sessionID)
	return nil
}

// AcceptTrade records user's acceptance of the current bundle. The first
// acceptance moves the session to OneUserAccepted; a second, different
// user's acceptance moves it to Accepted and clears UserActed; re-accepting
// as the same user is an idempotent no-op.
func (e *Engine) AcceptTrade(sessionID uuid.UUID, user string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess, ok := e.sessions[sessionID]
	if !ok {
		return newError(KindUnknownSession, fmt.Sprintf("session %s not found", sessionID))
	}
	if !canMutate(sess.state.Status) {
		return newError(KindInvalidPhase, fmt.Sprintf("cannot accept trade in status %s", sess.state.Status))
	}

	switch {
	case sess.state.UserActed == nil:
		sess.state.UserActed = &user
		sess.state.Status = StatusOneUserAccepted
	case *sess.state.UserActed == user:
		// idempotent re-accept, no change
	default:
		sess.state.UserActed = nil
		sess.state.Status = StatusAccepted
	}

	e.broadcastLocked(sessionID)
	return nil
}

// BuildTransaction materializes the unsigned settlement transaction via the
// transaction builder once both parties have accepted, caching it on the
// session and advancing status to TransactionCreated. Calling it again
// while the status is TransactionCreated is a no-op that keeps the cached
// transaction; the transaction itself is read via Snapshot. The builder
// (and its blockhash lookup) runs with the engine mutex released.
func (e *Engine) BuildTransaction(ctx context.Context, sessionID uuid.UUID) error {
	e.mu.Lock()
	sess, ok := e.sessions[sessionID]
	if !ok {
		e.mu.Unlock()
		return newError(KindUnknownSession, fmt.Sprintf("session %s not found", sessionID))
	}
	status, offers, built := sess.state.Status, sess.state.Offers, sess.state.Transaction != nil
	e.mu.Unlock()

	if status == StatusTransactionCreated && built {
		return nil
	}
	if status != StatusAccepted {
		return newError(KindInvalidPhase, fmt.Sprintf("cannot build transaction in status %s", status))
	}

	tx, err := e.builder.CreateTransaction(ctx, offers)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if sess.state.Transaction != nil {
		return nil
	}
	sess.state.Transaction = tx
	sess.state.Signatures = make(map[string]string)
	sess.state.Status = StatusTransactionCreated

	e.broadcastLocked(sessionID)
	return nil
}

// RecordSignature records user's countersignature of the cached
// transaction, advancing TransactionCreated to OneUserSigned once the
// first signature arrives, and OneUserSigned to TransactionSent once both
// parties have signed. Submitting the fully-signed transaction to the
// chain is outside the engine's scope (the server holds no custody).
func (e *Engine) RecordSignature(sessionID uuid.UUID, user, signature string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess, ok := e.sessions[sessionID]
	if !ok {
		return newError(KindUnknownSession, fmt.Sprintf("session %s not found", sessionID))
	}
	if sess.state.Status != StatusTransactionCreated && sess.state.Status != StatusOneUserSigned {
		return newError(KindInvalidPhase, fmt.Sprintf("cannot record signature in status %s", sess.state.Status))
	}

	if sess.state.Signatures == nil {
		sess.state.Signatures = make(map[string]string)
	}
	sess.state.Signatures[user] = signature

	switch {
	case len(sess.state.Signatures) >= 2:
		sess.state.Status = StatusTransactionSent
	default:
		sess.state.Status = StatusOneUserSigned
	}

	e.broadcastLocked(sessionID)
	return nil
}

// Snapshot returns a copy of a session's current state for read-only
// inspection (e.g. returning the cached transaction to a caller).
func (e *Engine) Snapshot(sessionID uuid.UUID) (TradeState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess, ok := e.sessions[sessionID]
	if !ok {
		return TradeState{}, newError(KindUnknownSession, fmt.Sprintf("session %s not found", sessionID))
	}
	state := sess.state
	if state.Signatures != nil {
		state.Signatures = make(map[string]string, len(sess.state.Signatures))
		for user, signature := range sess.state.Signatures {
			state.Signatures[user] = signature
		}
	}
	return state, nil
}
