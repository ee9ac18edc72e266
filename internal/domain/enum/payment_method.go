package enum

// PaymentMethod is how a client settled a payment.
type PaymentMethod string

const (
	PaymentMethodTransfer PaymentMethod = "transferencia"
	PaymentMethodCash     PaymentMethod = "efectivo"
	PaymentMethodCard     PaymentMethod = "tarjeta"
	PaymentMethodCheck    PaymentMethod = "cheque"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodTransfer, PaymentMethodCash, PaymentMethodCard, PaymentMethodCheck:
		return true
	}
	return false
}

// JournalType classifies an accounting entry (póliza).
type JournalType string

const (
	JournalTypeIncome  JournalType = "ingreso"
	JournalTypeExpense JournalType = "egreso"
	JournalTypeGeneral JournalType = "diario"
)

// AccountNature tells which side increases an account's balance.
type AccountNature string

const (
	AccountNatureDebit  AccountNature = "debit"
	AccountNatureCredit AccountNature = "credit"
)
