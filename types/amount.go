package types

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// Amount is an arbitrary-precision non-negative integer amount, serialized
// over the wire as a decimal string (the node's JSON-RPC channel protocol
// represents uint/bignum fields as decimal strings to avoid precision loss
// in JSON numbers).
type Amount struct {
	i big.Int
}

// NewAmount constructs an Amount from an int64. Negative values are retained
// as supplied; callers that must reject negative amounts (e.g. the action
// surface validating caller input) do so explicitly with Sign.
func NewAmount(v int64) Amount {
	var a Amount
	a.i.SetInt64(v)
	return a
}

// ParseAmount parses a decimal string into an Amount.
func ParseAmount(s string) (Amount, error) {
	var a Amount
	_, ok := a.i.SetString(s, 10)
	if !ok {
		return Amount{}, fmt.Errorf("types: invalid decimal amount %q", s)
	}
	return a, nil
}

// Sign returns -1, 0, or +1 depending on the sign of the amount.
func (a Amount) Sign() int {
	return a.i.Sign()
}

// BigInt returns a copy of the amount's underlying big.Int.
func (a Amount) BigInt() *big.Int {
	return new(big.Int).Set(&a.i)
}

// String returns the amount's canonical decimal string representation.
func (a Amount) String() string {
	return a.i.String()
}

// Add returns the sum of two amounts.
func (a Amount) Add(b Amount) Amount {
	var r Amount
	r.i.Add(&a.i, &b.i)
	return r
}

// Sub returns a minus b.
func (a Amount) Sub(b Amount) Amount {
	var r Amount
	r.i.Sub(&a.i, &b.i)
	return r
}

// Cmp compares a to b, returning -1, 0, or +1.
func (a Amount) Cmp(b Amount) int {
	return a.i.Cmp(&b.i)
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.i.String())
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("types: amount must be a decimal string: %w", err)
	}
	v, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}
