// Package authgate asks an external approval service whether a session may
// start translation jobs. The core only consumes the decision.
package authgate

import "context"

// Decision is the gate's answer for a session.
type Decision string

const (
	Allowed Decision = "allowed"
	Pending Decision = "pending"
	Denied  Decision = "denied"
)

// Gate checks a session token against the approval workflow.
type Gate interface {
	Check(ctx context.Context, sessionToken string) (Decision, error)
}

// StaticGate always returns a fixed decision. Used when no auth service is
// configured, and as a test stub.
type StaticGate struct {
	Decision Decision
}

func (g StaticGate) Check(ctx context.Context, sessionToken string) (Decision, error) {
	return g.Decision, nil
}
