package fsm

import (
	"encoding/json"

	"github.com/aeternity/aesc-go/types"
)

// channelOpenParams is the outbound channels.initialize request, sent by
// both roles to bring a new FSM session up.
type channelOpenParams struct {
	InitiatorID     types.Address `json:"initiator_id"`
	ResponderID     types.Address `json:"responder_id"`
	PushAmount      types.Amount  `json:"push_amount"`
	InitiatorAmount types.Amount  `json:"initiator_amount"`
	ResponderAmount types.Amount  `json:"responder_amount"`
	ChannelReserve  types.Amount  `json:"channel_reserve"`
	LockPeriod      uint64        `json:"lock_period"`
	Role            types.Role    `json:"role"`
}

// reestablishParams is the outbound channels.reestablish request.
type reestablishParams struct {
	ChannelID  types.ChannelID `json:"channel_id"`
	FsmID      types.FsmID     `json:"fsm_id"`
	OffChainTx types.TxBlob    `json:"offchain_tx,omitempty"`
}

// updateNewParams is the outbound channels.update.new request body for a
// single-transfer advance.
type updateNewParams struct {
	From   types.Address `json:"from"`
	To     types.Address `json:"to"`
	Amount types.Amount  `json:"amount"`
}

// depositParams is the outbound channels.deposit request body.
type depositParams struct {
	Amount types.Amount `json:"amount"`
}

// withdrawParams is the outbound channels.withdraw request body.
type withdrawParams struct {
	Amount types.Amount `json:"amount"`
}

// newContractParams is the outbound channels.update.new_contract request
// body.
type newContractParams struct {
	Owner      types.Address `json:"owner"`
	Code       []byte        `json:"code"`
	CallData   []byte        `json:"call_data"`
	Deposit    types.Amount  `json:"deposit"`
	VMVersion  int           `json:"vm_version"`
	ABIVersion int           `json:"abi_version"`
}

// callContractParams is the outbound channels.update.call_contract request
// body.
type callContractParams struct {
	Caller     types.Address `json:"caller"`
	Contract   types.Address `json:"contract"`
	ABIVersion int           `json:"abi_version"`
	Amount     types.Amount  `json:"amount"`
	CallData   []byte        `json:"call_data"`
	GasPrice   types.Amount  `json:"gas_price"`
	GasLimit   uint64        `json:"gas_limit"`
}

// signRequestParams is the inbound channels.sign.<tag> notification body:
// an unsigned (or partially signed) tx blob, and, for advances carrying an
// off-chain update, the proposed operations so the signer can inspect them.
type signRequestParams struct {
	Tx     types.TxBlob  `json:"tx"`
	Update *types.Update `json:"updates,omitempty"`
}

// signedParams is the outbound channels.<method> reply carrying the signer's
// result back to the node: either a signed tx, or an error object following
// the node's abort-code convention.
type signedParams struct {
	Tx    types.TxBlob `json:"tx,omitempty"`
	Error *signedError `json:"error,omitempty"`
}

type signedError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// onChainTxParams is the inbound channels.on_chain_tx notification body.
type onChainTxParams struct {
	Tx   types.TxBlob `json:"tx"`
	Type string       `json:"type"`
}

// infoParams is the inbound channels.info notification body, used both for
// the open handshake's terminal "open" event and for lock/ack events that
// carry no extra payload. ChannelID/FsmID are populated once the node has
// assigned them, typically alongside the "open" event.
type infoParams struct {
	Event     string          `json:"event"`
	ChannelID types.ChannelID `json:"channel_id,omitempty"`
	FsmID     types.FsmID     `json:"fsm_id,omitempty"`
}

// errorParams is the inbound channels.error notification body.
type errorParams struct {
	ChannelID types.ChannelID `json:"channel_id"`
	Code      int             `json:"code"`
	Message   string          `json:"message"`
}

// messageParams is the inbound/outbound channels.message notification body,
// free-form application chat.
type messageParams struct {
	From    types.Address   `json:"from"`
	To      types.Address   `json:"to,omitempty"`
	Message json.RawMessage `json:"message"`
}

// leaveParams is the inbound channels.leave response body.
type leaveParams struct {
	ChannelID types.ChannelID `json:"channel_id"`
	Tx        types.TxBlob    `json:"tx"`
}

// forceProgressParams is the outbound channels.force_progress request body.
type forceProgressParams struct {
	Update types.Update `json:"update"`
}

// forceProgressResultParams is the inbound response body to
// channels.force_progress.
type forceProgressResultParams struct {
	Tx   types.TxBlob `json:"tx"`
	Hash string       `json:"hash"`
}

func decode(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}
