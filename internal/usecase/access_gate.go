package usecase

import (
	"context"
	"errors"

	"safarsathi-service/internal/domain/entity"
	"safarsathi-service/internal/domain/repository"
	"safarsathi-service/internal/infrastructure/security"
	"safarsathi-service/pkg/apperror"
	"safarsathi-service/pkg/logger"
)

var (
	ErrNotAuthenticated = apperror.New(apperror.KindUnauthorized, "not_authenticated", "User is not authenticated.")
	ErrInvalidSession   = apperror.New(apperror.KindUnauthorized, "invalid_session", "Session is invalid or expired.")
	ErrNotAuthorized    = apperror.New(apperror.KindForbidden, "not_authorized", "You are not authorized for this resource.")
)

// Credential is a token presented by a request together with where it came from
type Credential struct {
	Source string
	Token  string
}

// AccessGate resolves request credentials to actors and checks capabilities
type AccessGate struct {
	actorRepo repository.ActorRepository
	tokens    TokenIssuer
	logger    logger.Logger
}

// NewAccessGate creates a new access gate
func NewAccessGate(actorRepo repository.ActorRepository, tokens TokenIssuer, logger logger.Logger) *AccessGate {
	return &AccessGate{
		actorRepo: actorRepo,
		tokens:    tokens,
		logger:    logger,
	}
}

// Authenticate resolves the first non-empty credential. Callers pass
// credentials in precedence order; extra credentials are logged and ignored.
func (g *AccessGate) Authenticate(ctx context.Context, creds []Credential) (*entity.Actor, error) {
	var chosen *Credential
	var ignored []string
	for i := range creds {
		if creds[i].Token == "" {
			continue
		}
		if chosen == nil {
			chosen = &creds[i]
			continue
		}
		ignored = append(ignored, creds[i].Source)
	}

	if chosen == nil {
		return nil, ErrNotAuthenticated
	}
	if len(ignored) > 0 {
		g.logger.Warn("Request carries more than one credential",
			"used", chosen.Source,
			"ignored", ignored)
	}

	claims, err := g.tokens.Verify(chosen.Token)
	if err != nil {
		if errors.Is(err, security.ErrInvalidToken) {
			return nil, ErrInvalidSession.Wrap(err)
		}
		return nil, err
	}

	actor, err := g.actorRepo.FindByID(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if actor == nil || actor.Role != claims.Role {
		g.logger.Debug("Token does not match a current actor", "actorID", claims.ID, "source", chosen.Source)
		return nil, ErrInvalidSession
	}

	return actor, nil
}

// Authorize authenticates and requires one of the allowed capabilities.
// With no capabilities listed any authenticated actor passes.
func (g *AccessGate) Authorize(ctx context.Context, creds []Credential, allowed ...entity.Capability) (*entity.Actor, error) {
	actor, err := g.Authenticate(ctx, creds)
	if err != nil {
		return nil, err
	}

	if err := Require(actor, allowed...); err != nil {
		g.logger.Debug("Capability check failed", "actorID", actor.ID, "role", actor.Role)
		return nil, err
	}
	return actor, nil
}

// Require checks that actor holds one of the allowed capabilities
func Require(actor *entity.Actor, allowed ...entity.Capability) error {
	if actor == nil {
		return ErrNotAuthenticated
	}
	if len(allowed) == 0 {
		return nil
	}

	capability, ok := actor.Capability()
	if !ok {
		return ErrNotAuthorized
	}
	for _, c := range allowed {
		if c == capability {
			return nil
		}
	}
	return ErrNotAuthorized.WithMessage(string(capability) + " is not authorized for this resource.")
}
