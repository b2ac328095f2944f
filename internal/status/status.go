// Package status defines the closed status enums for orders, order items and
// alterations, together with the linear flow each one follows. Every
// presentation concern (label, color, next step) is an exhaustive mapping over
// the closed set, so adding a status forces the maps to be revisited.
package status

// OrderStatus is the lifecycle state of an order. Order items use the same
// set and the same flow, but advance independently of their parent order.
type OrderStatus string

const (
	OrderPending      OrderStatus = "pending"
	OrderInProduction OrderStatus = "in_production"
	OrderReady        OrderStatus = "ready"
	OrderDelivered    OrderStatus = "delivered"
	OrderCancelled    OrderStatus = "cancelled"
)

// orderSequence is the forward path. cancelled sits outside the sequence and
// is reachable from any non-terminal state.
var orderSequence = []OrderStatus{OrderPending, OrderInProduction, OrderReady, OrderDelivered}

// Valid reports whether s is one of the known order statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderInProduction, OrderReady, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether s admits no further transitions.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// Next returns the single successor of s in the forward sequence. The second
// return is false for the last sequence element, for cancelled, and for
// unknown values.
func (s OrderStatus) Next() (OrderStatus, bool) {
	for i, st := range orderSequence {
		if st == s && i+1 < len(orderSequence) {
			return orderSequence[i+1], true
		}
	}
	return "", false
}

// CanTransition reports whether s may move to 'to'. Forward jumps are allowed
// (a status strictly later in the sequence), going back or re-applying the
// same status is not. cancelled is reachable from any non-terminal state and
// never left.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if to == OrderCancelled {
		return true
	}
	return orderIndex(to) > orderIndex(s)
}

func orderIndex(s OrderStatus) int {
	for i, st := range orderSequence {
		if st == s {
			return i
		}
	}
	return -1
}

// Label returns the Spanish display label for s.
func (s OrderStatus) Label() string {
	switch s {
	case OrderPending:
		return "Pendiente"
	case OrderInProduction:
		return "En producción"
	case OrderReady:
		return "Listo"
	case OrderDelivered:
		return "Entregado"
	case OrderCancelled:
		return "Cancelado"
	}
	return string(s)
}

// Color returns the badge color used by the clients for s.
func (s OrderStatus) Color() string {
	switch s {
	case OrderPending:
		return "yellow"
	case OrderInProduction:
		return "blue"
	case OrderReady:
		return "green"
	case OrderDelivered:
		return "gray"
	case OrderCancelled:
		return "red"
	}
	return "gray"
}

// AlterationStatus is the lifecycle state of an alteration. Same linear-flow
// contract as orders with its own vocabulary.
type AlterationStatus string

const (
	AlterationReceived   AlterationStatus = "received"
	AlterationInProgress AlterationStatus = "in_progress"
	AlterationReady      AlterationStatus = "ready"
	AlterationDelivered  AlterationStatus = "delivered"
	AlterationCancelled  AlterationStatus = "cancelled"
)

var alterationSequence = []AlterationStatus{AlterationReceived, AlterationInProgress, AlterationReady, AlterationDelivered}

// Valid reports whether s is one of the known alteration statuses.
func (s AlterationStatus) Valid() bool {
	switch s {
	case AlterationReceived, AlterationInProgress, AlterationReady, AlterationDelivered, AlterationCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether s admits no further transitions.
func (s AlterationStatus) IsTerminal() bool {
	return s == AlterationDelivered || s == AlterationCancelled
}

// Next returns the single successor of s in the forward sequence.
func (s AlterationStatus) Next() (AlterationStatus, bool) {
	for i, st := range alterationSequence {
		if st == s && i+1 < len(alterationSequence) {
			return alterationSequence[i+1], true
		}
	}
	return "", false
}

// CanTransition reports whether s may move to 'to' under the same rules as
// order statuses.
func (s AlterationStatus) CanTransition(to AlterationStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if to == AlterationCancelled {
		return true
	}
	return alterationIndex(to) > alterationIndex(s)
}

func alterationIndex(s AlterationStatus) int {
	for i, st := range alterationSequence {
		if st == s {
			return i
		}
	}
	return -1
}

// Label returns the Spanish display label for s.
func (s AlterationStatus) Label() string {
	switch s {
	case AlterationReceived:
		return "Recibido"
	case AlterationInProgress:
		return "En proceso"
	case AlterationReady:
		return "Listo"
	case AlterationDelivered:
		return "Entregado"
	case AlterationCancelled:
		return "Cancelado"
	}
	return string(s)
}

// Color returns the badge color used by the clients for s.
func (s AlterationStatus) Color() string {
	switch s {
	case AlterationReceived:
		return "yellow"
	case AlterationInProgress:
		return "blue"
	case AlterationReady:
		return "green"
	case AlterationDelivered:
		return "gray"
	case AlterationCancelled:
		return "red"
	}
	return "gray"
}
