package repository

import (
	"context"
	"time"

	"safarsathi-service/pkg/apperror"
)

var (
	ErrInvalidCode = apperror.Validation("invalid_code", "Invalid verification code.")
	ErrCodeExpired = apperror.New(apperror.KindExpired, "code_expired", "Verification code has expired. Please request a new one.")
)

// CodeRepository stores one-time verification codes keyed by email.
// Consume succeeds at most once per issued code. It returns ErrCodeExpired
// once the code is past its TTL and ErrInvalidCode when no matching code
// exists.
type CodeRepository interface {
	Put(ctx context.Context, email, code string, ttl time.Duration) error
	Consume(ctx context.Context, email, code string) error
}
