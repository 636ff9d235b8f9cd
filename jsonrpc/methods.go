package jsonrpc

// Outbound request methods the client sends to the node.
const (
	MethodUpdateNew          = "channels.update.new"
	MethodUpdateNewContract  = "channels.update.new_contract"
	MethodUpdateCallContract = "channels.update.call_contract"
	MethodDeposit            = "channels.deposit"
	MethodWithdraw           = "channels.withdraw"
	MethodForceProgress      = "channels.force_progress"
	MethodShutdown           = "channels.shutdown"
	MethodLeave              = "channels.leave"
	MethodReestablish        = "channels.reestablish"
	MethodMessage            = "channels.message"
	MethodPOI                = "channels.get.poi"
	MethodBalances           = "channels.get.balances"
	MethodContractCall       = "channels.get.contract_call"
	MethodContractCallsClean = "channels.clean_contract_calls"
	MethodContractState      = "channels.get.contract_state"
	MethodCallContractStatic = "channels.dry_run"
)

// Inbound notification methods observed from the node (non-exhaustive).
const (
	NotifyChannelOpen       = "channels.info"
	NotifyUpdate            = "channels.update"
	NotifyOnChainTx         = "channels.on_chain_tx"
	NotifyLeave             = "channels.leave"
	NotifyError             = "channels.error"
	NotifyMessage           = "channels.message"
	NotifyFundingCreated    = "channels.funding_created"
	NotifyFundingSigned     = "channels.funding_signed"
	NotifyOwnFundingLocked  = "channels.own_funding_locked"
	NotifyFundingLocked     = "channels.funding_locked"
	NotifyOwnDepositLocked  = "channels.own_deposit_locked"
	NotifyDepositLocked     = "channels.deposit_locked"
	NotifyOwnWithdrawLocked = "channels.own_withdraw_locked"
	NotifyWithdrawLocked    = "channels.withdraw_locked"
	NotifyReestablish       = "channels.reestablish"
)

// SignRequestMethod returns the notification method name the node uses to
// ask the client to sign with the given tag: "channels.sign.<tag>".
func SignRequestMethod(tag string) string {
	return "channels.sign." + tag
}
