/*
balance.go - Available-balance view

PURPOSE:
  Answers "how much can this employee still take?" for one leave
  category. Day-based categories carry an entitlement and a used amount;
  hour-based categories carry a single running total, expressed here as
  an entitlement with nothing consumed.

AVAILABILITY CALCULATION:
  Available = Entitlement - Consumed

VALIDATION:
  CanConsume(amount) checks:
  1. Amount is positive
  2. Available() >= amount

SEE ALSO:
  - timeoff/ledger.go: Builds balances from ledger records
*/
package generic

// Balance is the resource balance of one category for one employee.
type Balance struct {
	EntityID     EntityID
	ResourceType ResourceType

	// Total granted (day categories) or current running total (hour categories)
	Entitlement Amount

	// Consumed by approved requests
	Consumed Amount
}

// Available returns what can still be requested.
func (b Balance) Available() Amount {
	return b.Entitlement.Sub(b.Consumed)
}

// CanConsume checks if the given amount can be consumed.
func (b Balance) CanConsume(amount Amount) bool {
	if !amount.IsPositive() {
		return false
	}
	return !b.Available().Sub(amount).IsNegative()
}

// Shortage builds the error reported when amount exceeds availability.
func (b Balance) Shortage(amount Amount) *InsufficientBalanceError {
	return &InsufficientBalanceError{
		EntityID:     b.EntityID,
		ResourceType: b.ResourceType,
		Available:    b.Available(),
		Requested:    amount,
	}
}
