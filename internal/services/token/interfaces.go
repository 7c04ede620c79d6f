package token

import "context"

// Stablecoin is the boundary contract the gate and gateway consume.
// Amounts are integer base units; Decimals must be read at call time
// wherever amounts are user-facing.
type Stablecoin interface {
	Name(ctx context.Context) (string, error)
	Symbol(ctx context.Context) (string, error)
	Decimals(ctx context.Context) (uint8, error)
	TotalSupply(ctx context.Context) (int64, error)
	BalanceOf(ctx context.Context, address string) (int64, error)
	Transfer(ctx context.Context, caller, to string, amount int64) error
	Approve(ctx context.Context, caller, spender string, amount int64) error
	Allowance(ctx context.Context, owner, spender string) (int64, error)
	TransferFrom(ctx context.Context, caller, from, to string, amount int64) error
}

// Faucet mints demo funds. Not part of the Stablecoin boundary; a real
// token deployment would not expose it.
type Faucet interface {
	Mint(ctx context.Context, to string, amount int64) error
}
