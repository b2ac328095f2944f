package enum

// Order/alteration state machines live in internal/status. This package holds
// the remaining closed vocabularies, CHECK constrained in the DB.

const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleSeller = "seller"
	RoleViewer = "viewer"
)

const (
	PaymentMethodCash     = "cash"
	PaymentMethodCard     = "card"
	PaymentMethodTransfer = "transfer"
)

const (
	PQRSPeticion   = "peticion"
	PQRSQueja      = "queja"
	PQRSReclamo    = "reclamo"
	PQRSSugerencia = "sugerencia"
)

const (
	PQRSStatusOpen     = "open"
	PQRSStatusInReview = "in_review"
	PQRSStatusClosed   = "closed"
)

const (
	CashBoxMenor = "caja_menor"
	CashBoxMayor = "caja_mayor"
)

const (
	CashKindIncome  = "income"
	CashKindExpense = "expense"
)

// ValidRole reports whether r is an assignable per-school role.
func ValidRole(r string) bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleSeller, RoleViewer:
		return true
	}
	return false
}

// ValidPaymentMethod reports whether m is a supported payment method.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer:
		return true
	}
	return false
}

// ValidPQRSType reports whether t is one of the PQRS taxonomy entries.
func ValidPQRSType(t string) bool {
	switch t {
	case PQRSPeticion, PQRSQueja, PQRSReclamo, PQRSSugerencia:
		return true
	}
	return false
}

// ValidPQRSStatus reports whether s is a ticket status.
func ValidPQRSStatus(s string) bool {
	switch s {
	case PQRSStatusOpen, PQRSStatusInReview, PQRSStatusClosed:
		return true
	}
	return false
}

// ValidCashBox reports whether b names an accounting cash box.
func ValidCashBox(b string) bool {
	return b == CashBoxMenor || b == CashBoxMayor
}

// ValidCashKind reports whether k is a cash movement direction.
func ValidCashKind(k string) bool {
	return k == CashKindIncome || k == CashKindExpense
}
