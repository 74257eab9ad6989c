package amqp10

// CreditPolicy decides how a receiver replenishes link credit. It runs
// right after the attach handshake completes and again after every
// received message, so implementations choose between manual, auto-top-up
// and windowed renewal. Errors from AddCredits inside a policy are
// surfaced through the link's error notification rather than returned.
type CreditPolicy func(l *Link)

// ManualCredit never grants credit automatically; the caller drives
// AddCredits itself
func ManualCredit() CreditPolicy {
	return func(*Link) {}
}

// RefreshAtEmpty grants quantum credits whenever the link has none left,
// including the initial grant on attach
func RefreshAtEmpty(quantum uint32) CreditPolicy {
	return func(l *Link) {
		if l.Credit() > 0 {
			return
		}
		l.grantFromPolicy(quantum)
	}
}

// RefreshAtThreshold tops the link back up to quantum whenever credit
// falls below threshold
func RefreshAtThreshold(quantum, threshold uint32) CreditPolicy {
	return func(l *Link) {
		credit := l.Credit()
		if credit >= threshold {
			return
		}
		l.grantFromPolicy(quantum - credit)
	}
}
