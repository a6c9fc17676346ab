package service

import (
	"DocBase/internal/model"
	"context"
	"fmt"
)

// SignatureLookup то, что политике нужно знать о ledger'е.
type SignatureLookup interface {
	HasSigned(ctx context.Context, linkID, email string) (bool, error)
}

// policyCheck возвращает Granted, если проверка пройдена, иначе причину отказа.
type policyCheck func(ctx context.Context, link *model.Link, rc RequestContext) (Decision, error)

// PolicyEvaluator вычисляет решение о доступе к документу ссылки.
type PolicyEvaluator struct {
	signatures SignatureLookup
}

func NewPolicyEvaluator(signatures SignatureLookup) *PolicyEvaluator {
	return &PolicyEvaluator{signatures: signatures}
}

// Evaluate проверяет ссылку в фиксированном порядке; первый отказ побеждает:
// срок действия, аутентификация, подпись, пароль.
func (e *PolicyEvaluator) Evaluate(ctx context.Context, link *model.Link, rc RequestContext) (Decision, error) {
	return firstDenial(ctx, link, rc,
		checkExpiration,
		checkAuthentication,
		e.checkSignature,
		checkPassword,
	)
}

func firstDenial(ctx context.Context, link *model.Link, rc RequestContext, checks ...policyCheck) (Decision, error) {
	for _, check := range checks {
		d, err := check(ctx, link, rc)
		if err != nil {
			return "", err
		}
		if d != Granted {
			return d, nil
		}
	}
	return Granted, nil
}

func checkExpiration(_ context.Context, link *model.Link, rc RequestContext) (Decision, error) {
	if link.Expired(rc.Now) {
		return DeniedExpired, nil
	}
	return Granted, nil
}

func checkAuthentication(_ context.Context, link *model.Link, rc RequestContext) (Decision, error) {
	if link.RequireSignature && rc.AuthenticatedEmail == "" {
		return DeniedAuthRequired, nil
	}
	return Granted, nil
}

func (e *PolicyEvaluator) checkSignature(ctx context.Context, link *model.Link, rc RequestContext) (Decision, error) {
	if !link.RequireSignature {
		return Granted, nil
	}
	signed, err := e.signatures.HasSigned(ctx, link.ID, rc.AuthenticatedEmail)
	if err != nil {
		return "", fmt.Errorf("check signature: %w", err)
	}
	if !signed {
		return DeniedSignatureRequired, nil
	}
	return Granted, nil
}

func checkPassword(_ context.Context, link *model.Link, rc RequestContext) (Decision, error) {
	if !link.HasPassword() {
		return Granted, nil
	}
	if rc.SubmittedPassword == "" {
		return DeniedPasswordRequired, nil
	}
	if !VerifyPassword(rc.SubmittedPassword, *link.PasswordHash) {
		return DeniedPasswordIncorrect, nil
	}
	return Granted, nil
}
