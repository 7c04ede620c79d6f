package subscription

import "context"

// CredentialChecker is the slice of the credential service the gate
// needs: a pure validity read.
type CredentialChecker interface {
	IsVerified(ctx context.Context, user string) (bool, error)
}
