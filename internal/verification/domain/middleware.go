package domain

import (
	"context"
	"log/slog"
	"time"

	"github.com/pendergraft/contraverify/internal/verification"
)

// loggingService is the interface required for logging middleware.
type loggingService interface {
	Verify(ctx context.Context, req VerifyRequest) (*verification.Result, error)
}

// LoggingMiddleware returns a service middleware that logs all operations.
func LoggingMiddleware(logger *slog.Logger) func(loggingService) *loggingMiddleware {
	return func(next loggingService) *loggingMiddleware {
		return &loggingMiddleware{
			next:   next,
			logger: logger,
		}
	}
}

type loggingMiddleware struct {
	next   loggingService
	logger *slog.Logger
}

func (m *loggingMiddleware) Verify(ctx context.Context, req VerifyRequest) (*verification.Result, error) {
	start := time.Now()
	result, err := m.next.Verify(ctx, req)

	identity := ""
	if req.Identity != nil {
		identity = req.Identity.String()
	}
	m.logger.Info("Verify",
		"contract", req.ContractName,
		"identity", identity,
		"verifier", req.Verifier.String(),
		"network", req.Network.String(),
		"package", req.Package,
		"duration", time.Since(start),
		"error", err,
	)
	return result, err
}
