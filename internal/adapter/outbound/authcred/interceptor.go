package authcred

import (
	"github.com/Sentinel-Gate/invoke-core/internal/domain/invoke"
)

// CredentialKey is the attachment key a caller sets the raw credential
// under before dispatching through a chain that includes Interceptor.
var CredentialKey invoke.AttachmentKey = credentialKey{}

type credentialKey struct{}

// Interceptor rejects the request pass outright when the invocation's
// credential attachment does not verify, before a Receiver is ever
// reached. It never participates in the result pass: a failed
// verification already drove the invocation to Failed, so
// HandleInvocationResult is only ever called for invocations that passed
// verification, and it just proceeds inward.
type Interceptor struct {
	verifier *Verifier
}

// NewInterceptor builds an Interceptor backed by verifier.
func NewInterceptor(verifier *Verifier) *Interceptor {
	return &Interceptor{verifier: verifier}
}

// HandleInvocation verifies the CredentialKey attachment and either
// proceeds to the next stage or rejects the invocation.
func (i *Interceptor) HandleInvocation(ctx *invoke.InvocationContext) error {
	raw, ok := ctx.GetAttachment(CredentialKey)
	rawStr, isStr := raw.(string)
	if !ok || !isStr || rawStr == "" {
		return ctx.RejectRequest(ErrMissingCredential)
	}

	match, err := i.verifier.Verify(rawStr)
	if err != nil {
		return ctx.RejectRequest(err)
	}
	if !match {
		return ctx.RejectRequest(ErrInvalidCredential)
	}
	return ctx.SendRequest()
}

// HandleInvocationResult is a pass-through: credential verification has
// nothing further to say about a successful reply.
func (i *Interceptor) HandleInvocationResult(ctx *invoke.InvocationContext) (any, error) {
	return ctx.GetResult()
}
