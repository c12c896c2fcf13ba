// Package txbuilder assembles the single instruction that settles a trade:
// given each party's final, netted-out token offers, it builds an unsigned
// Solana transaction transferring tokens directly between the two parties'
// associated token accounts.
package txbuilder

import (
	"context"
	"fmt"
	"sort"

	"github.com/gagliardetto/solana-go"

	"github.com/klingon-exchange/trade-with-me/internal/chainctx"
	"github.com/klingon-exchange/trade-with-me/pkg/money"
)

// Builder creates unsigned swap transactions from a session's final offers.
type Builder struct {
	chain chainctx.Context
}

// New returns a Builder backed by chain.
func New(chain chainctx.Context) *Builder {
	return &Builder{chain: chain}
}

// CreateTransaction builds the unsigned transaction that carries out a
// two-party trade. offers maps each party's wallet address (base58) to
// their current offer bundle. The first party in lexicographic order of
// address pays the transaction fee.
func (b *Builder) CreateTransaction(ctx context.Context, offers map[string]money.OfferBundle) (*solana.Transaction, error) {
	if len(offers) != 2 {
		return nil, newError(KindInvalidParties, fmt.Sprintf("trade has %d parties, want 2", len(offers)), nil)
	}

	addresses := make([]string, 0, 2)
	for addr := range offers {
		addresses = append(addresses, addr)
	}
	sort.Strings(addresses)
	user1Addr, user2Addr := addresses[0], addresses[1]

	user1, err := solana.PublicKeyFromBase58(user1Addr)
	if err != nil {
		return nil, newError(KindBadAddress, fmt.Sprintf("party address %q", user1Addr), err)
	}
	user2, err := solana.PublicKeyFromBase58(user2Addr)
	if err != nil {
		return nil, newError(KindBadAddress, fmt.Sprintf("party address %q", user2Addr), err)
	}

	net1, net2 := cancelOutTradeTokens(offers[user1Addr], offers[user2Addr])
	if net1.IsEmpty() && net2.IsEmpty() {
		return nil, newError(KindEmptyTrade, "offers canceled out completely, nothing to transfer", nil)
	}

	var mints []solana.PublicKey
	var senderATAs, receiverATAs []solana.PublicKey
	var amounts []money.Amount

	if err := appendLegs(&mints, &senderATAs, &receiverATAs, &amounts, net1, user1, user2); err != nil {
		return nil, err
	}
	if err := appendLegs(&mints, &senderATAs, &receiverATAs, &amounts, net2, user2, user1); err != nil {
		return nil, err
	}

	data := make([]byte, 0, len(amounts)*16)
	for _, amount := range amounts {
		encoded, err := amount.MarshalFixed()
		if err != nil {
			return nil, fmt.Errorf("encode offer amount: %w", err)
		}
		data = append(data, encoded[:]...)
	}

	accounts := solana.AccountMetaSlice{
		solana.Meta(user1).WRITE().SIGNER(),
		solana.Meta(user2).WRITE().SIGNER(),
	}
	for _, mint := range mints {
		accounts.Append(solana.Meta(mint))
	}
	for _, ata := range senderATAs {
		accounts.Append(solana.Meta(ata).WRITE())
	}
	for _, ata := range receiverATAs {
		accounts.Append(solana.Meta(ata).WRITE())
	}

	instruction := solana.NewInstruction(b.chain.ProgramID(), accounts, data)

	blockhash, err := b.chain.LatestBlockhash(ctx)
	if err != nil {
		return nil, newError(KindRPC, "fetch latest blockhash", err)
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{instruction},
		blockhash,
		solana.TransactionPayer(user1),
	)
	if err != nil {
		return nil, fmt.Errorf("assemble transaction: %w", err)
	}

	return tx, nil
}

// appendLegs derives the sender and receiver associated token accounts for
// every mint offers sends from sender to receiver, appending them (and
// their mints and amounts) to the running account lists in a deterministic,
// mint-sorted order.
func appendLegs(mints, senderATAs, receiverATAs *[]solana.PublicKey, amounts *[]money.Amount, offers money.OfferBundle, sender, receiver solana.PublicKey) error {
	mintAddrs := make([]string, 0, len(offers))
	for mint := range offers {
		mintAddrs = append(mintAddrs, mint)
	}
	sort.Strings(mintAddrs)

	for _, mintAddr := range mintAddrs {
		mint, err := solana.PublicKeyFromBase58(mintAddr)
		if err != nil {
			return newError(KindBadAddress, fmt.Sprintf("mint address %q", mintAddr), err)
		}

		senderATA, _, err := solana.FindAssociatedTokenAddress(sender, mint)
		if err != nil {
			return fmt.Errorf("derive sender associated token account for %s: %w", mintAddr, err)
		}
		receiverATA, _, err := solana.FindAssociatedTokenAddress(receiver, mint)
		if err != nil {
			return fmt.Errorf("derive receiver associated token account for %s: %w", mintAddr, err)
		}

		*mints = append(*mints, mint)
		*senderATAs = append(*senderATAs, senderATA)
		*receiverATAs = append(*receiverATAs, receiverATA)
		*amounts = append(*amounts, offers[mintAddr])
	}

	return nil
}
