package txbuilder

import "fmt"

// Kind classifies why the transaction builder rejected a request.
type Kind string

const (
	// KindInvalidParties means the trade did not have exactly two
	// participants.
	KindInvalidParties Kind = "invalid_parties"
	// KindEmptyTrade means every offer canceled out, leaving nothing to
	// transfer.
	KindEmptyTrade Kind = "empty_trade"
	// KindBadAddress means a party or mint address did not parse as a
	// valid base58 public key.
	KindBadAddress Kind = "bad_address"
	// KindRPC means the chain context failed to supply a blockhash.
	KindRPC Kind = "rpc"
)

// Error is a classified transaction-building failure.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}
