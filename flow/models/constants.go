package models

// Financial request types understood by payment services.
const (
	RequestTypePayment      = "payment"
	RequestTypeReversal     = "reversal"
	RequestTypeTokenize     = "tokenize"
	RequestTypeBatchClose   = "batchClose"
	RequestTypePrintReceipt = "printReceipt"
)

// Well-known AdditionalData keys.
const (
	DataKeyBasket       = "basket"
	DataKeyAmounts      = "amounts"
	DataKeySplitTxn     = "splitTxn"
	DataKeySplitType    = "splitType"
	DataKeyCardNumber   = "cardNumber"
	DataKeyCardExpiry   = "cardExpiry"
	DataKeyAuthCode     = "authCode"
	DataKeyLoyaltyQuota = "loyaltyQuota"
)

// Split type tags attached to a round's response so downstream consumers know
// which base derivation applies. Amount-based and basket-based splits are
// mutually exclusive per round.
const (
	SplitTypeAmounts = "splitTypeAmounts"
	SplitTypeBasket  = "splitTypeBasket"
)

// Flow stage names used in channel metadata.
const (
	StageSplit       = "split"
	StagePayment     = "payment"
	StageGeneric     = "generic"
	StageStatusCheck = "statusCheck"
)

// DefaultPaymentMethod is assumed when a transaction response does not name
// its payment method.
const DefaultPaymentMethod = "card"

// Common payment methods.
const (
	PaymentMethodCard    = "card"
	PaymentMethodCash    = "cash"
	PaymentMethodLoyalty = "loyalty"
)
