package client

import (
	"context"
	"encoding/json"

	"github.com/aeternity/aesc-go/jsonrpc"
	"github.com/aeternity/aesc-go/types"
)

// These calls are answered directly by the node with no co-signing step, so
// they bypass the FSM's serial executor entirely and talk to the correlator
// straight from the caller's goroutine.

// ProofOfInclusion is the opaque, node-encoded proof blob returned by POI.
type ProofOfInclusion string

// POI requests a proof of inclusion for the given accounts and contracts in
// the channel's current off-chain state.
func (c *Client) POI(ctx context.Context, accounts, contracts []types.Address) (ProofOfInclusion, error) {
	raw, err := c.corr.Call(ctx, jsonrpc.MethodPOI, struct {
		Accounts  []types.Address `json:"accounts"`
		Contracts []types.Address `json:"contracts,omitempty"`
	}{Accounts: accounts, Contracts: contracts})
	if err != nil {
		return "", err
	}
	var poi ProofOfInclusion
	if err := json.Unmarshal(raw, &poi); err != nil {
		return "", err
	}
	return poi, nil
}

// Balances reports the current off-chain balance of each requested account.
func (c *Client) Balances(ctx context.Context, accounts []types.Address) (map[types.Address]types.Amount, error) {
	raw, err := c.corr.Call(ctx, jsonrpc.MethodBalances, struct {
		Accounts []types.Address `json:"accounts"`
	}{Accounts: accounts})
	if err != nil {
		return nil, err
	}
	var entries []struct {
		Account types.Address `json:"account"`
		Balance types.Amount  `json:"balance"`
	}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	out := make(map[types.Address]types.Amount, len(entries))
	for _, e := range entries {
		out[e.Account] = e.Balance
	}
	return out, nil
}

// ContractCallResult is the recorded outcome of a call previously made to a
// contract in the channel's off-chain VM state.
type ContractCallResult struct {
	Caller      types.Address `json:"caller"`
	Contract    types.Address `json:"contract"`
	ReturnType  string        `json:"return_type"`
	ReturnValue []byte        `json:"return_value"`
	GasUsed     uint64        `json:"gas_used"`
}

// GetContractCall retrieves the recorded result of a previous call to
// contract by caller at the given round.
func (c *Client) GetContractCall(ctx context.Context, caller, contract types.Address, round types.Round) (ContractCallResult, error) {
	raw, err := c.corr.Call(ctx, jsonrpc.MethodContractCall, struct {
		Caller   types.Address `json:"caller_id"`
		Contract types.Address `json:"contract_id"`
		Round    types.Round   `json:"round"`
	}{Caller: caller, Contract: contract, Round: round})
	if err != nil {
		return ContractCallResult{}, err
	}
	var result ContractCallResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return ContractCallResult{}, err
	}
	return result, nil
}

// CallContractStatic dry-runs a contract call against the channel's current
// off-chain VM state without proposing an advance, e.g. to preview a call's
// result before spending a round on it.
func (c *Client) CallContractStatic(ctx context.Context, op types.OffChainCallContract) (ContractCallResult, error) {
	raw, err := c.corr.Call(ctx, jsonrpc.MethodCallContractStatic, struct {
		Caller     types.Address `json:"caller_id"`
		Contract   types.Address `json:"contract_id"`
		ABIVersion int           `json:"abi_version"`
		Amount     types.Amount  `json:"amount"`
		CallData   []byte        `json:"call_data"`
		GasPrice   types.Amount  `json:"gas_price"`
		GasLimit   uint64        `json:"gas_limit"`
	}{
		Caller: op.Caller, Contract: op.Contract, ABIVersion: op.ABIVersion,
		Amount: op.Amount, CallData: op.CallData, GasPrice: op.GasPrice, GasLimit: op.GasLimit,
	})
	if err != nil {
		return ContractCallResult{}, err
	}
	var result ContractCallResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return ContractCallResult{}, err
	}
	return result, nil
}

// CleanContractCalls discards the node's cached record of past contract
// calls for this channel, freeing it to drop state for calls the caller no
// longer needs GetContractCall for.
func (c *Client) CleanContractCalls(ctx context.Context) error {
	_, err := c.corr.Call(ctx, jsonrpc.MethodContractCallsClean, struct{}{})
	return err
}

// ContractState is the opaque, node-encoded VM state blob of a contract
// deployed into the channel.
type ContractState string

// GetContractState retrieves the current off-chain VM state of a contract
// deployed into the channel. The blob is opaque to this client: decoding VM
// state is a contract SDK/compiler's concern, not the channel client's.
func (c *Client) GetContractState(ctx context.Context, contract types.Address) (ContractState, error) {
	raw, err := c.corr.Call(ctx, jsonrpc.MethodContractState, struct {
		Contract types.Address `json:"contract_id"`
	}{Contract: contract})
	if err != nil {
		return "", err
	}
	var state ContractState
	if err := json.Unmarshal(raw, &state); err != nil {
		return "", err
	}
	return state, nil
}
