package types

// SignTag identifies why the node is asking the caller's signer to sign.
// The caller's signer uses the tag to decide how (or whether) to authorize
// the request.
type SignTag string

const (
	SignTagInitiatorSign   SignTag = "initiator_sign"
	SignTagResponderSign   SignTag = "responder_sign"
	SignTagUpdateAck       SignTag = "update_ack"
	SignTagDepositAck      SignTag = "deposit_ack"
	SignTagWithdrawAck     SignTag = "withdraw_ack"
	SignTagShutdownSignAck SignTag = "shutdown_sign_ack"
	SignTagDepositCreated  SignTag = "deposit_created"
	SignTagWithdrawCreated SignTag = "withdraw_created"
)

// ErrorUserDefined is the fixed errorMessage the FSM attaches to a
// caller-supplied numeric abort code.
const ErrorUserDefined = "user-defined"

// AdvanceOutcome is the result of a co-signed off-chain advance
// (update/deposit/withdraw/createContract/callContract), returned to the
// caller by the corresponding action surface method. Exactly one of
// {Accepted == true, SignedTx set} or {Accepted == false} holds.
type AdvanceOutcome struct {
	Accepted     bool
	SignedTx     TxBlob
	ErrorCode    *int
	ErrorMessage string

	// Address is set when the advance was a createContract and was
	// accepted; it is the deterministically derived contract address.
	Address Address
}

// Rejected builds an AdvanceOutcome for a plain rejection with no abort
// code, e.g. the counterparty's signer declined without an error.
func Rejected() AdvanceOutcome {
	return AdvanceOutcome{Accepted: false}
}

// Aborted builds an AdvanceOutcome for a counterparty abort carrying a
// caller-defined numeric code.
func Aborted(code int) AdvanceOutcome {
	c := code
	return AdvanceOutcome{Accepted: false, ErrorCode: &c, ErrorMessage: ErrorUserDefined}
}

// Accept builds an AdvanceOutcome for a fully co-signed advance.
func Accept(signedTx TxBlob) AdvanceOutcome {
	return AdvanceOutcome{Accepted: true, SignedTx: signedTx}
}
