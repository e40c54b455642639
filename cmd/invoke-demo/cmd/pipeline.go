package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Sentinel-Gate/invoke-core/internal/adapter/outbound/audit"
	"github.com/Sentinel-Gate/invoke-core/internal/adapter/outbound/authcred"
	"github.com/Sentinel-Gate/invoke-core/internal/adapter/outbound/cel"
	"github.com/Sentinel-Gate/invoke-core/internal/adapter/outbound/loopback"
	"github.com/Sentinel-Gate/invoke-core/internal/config"
	"github.com/Sentinel-Gate/invoke-core/internal/domain/invoke"
)

// pipeline bundles everything a scenario needs: the interceptor chain
// built from cfg, and a cleanup func that releases the audit store.
type pipeline struct {
	chain   []invoke.Interceptor
	cleanup func()
}

// buildPipeline wires the credential, affinity, and audit interceptors in
// per cfg, in the order a caller would reasonably want them to run:
// credential check first (reject before doing any routing work),
// affinity hint second, audit last so it journals the outcome of
// whatever the inner stages decided.
func buildPipeline(cfg *config.Config, log *slog.Logger) (*pipeline, error) {
	var chain []invoke.Interceptor
	var cleanups []func()

	if cfg.Credential.Enabled {
		verifier := authcred.NewVerifier(cfg.Credential.HashedSecret)
		chain = append(chain, authcred.NewInterceptor(verifier))
	}

	if cfg.Affinity.Enabled {
		stage, err := cel.NewAffinityStage(cfg.Affinity.Expression)
		if err != nil {
			return nil, fmt.Errorf("affinity interceptor: %w", err)
		}
		chain = append(chain, stage)
	}

	if cfg.Audit.Enabled {
		store, err := audit.Open(cfg.Audit.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("audit store: %w", err)
		}
		chain = append(chain, audit.NewInterceptor(store, log))
		cleanups = append(cleanups, func() { store.Close() })
	}

	return &pipeline{
		chain: chain,
		cleanup: func() {
			for _, c := range cleanups {
				c()
			}
		},
	}, nil
}

// newReceiver builds the loopback Receiver a scenario dispatches its own
// handler through, using cfg's configured worker count and latency.
func newReceiver(cfg *config.Config, handler loopback.Handler) (*loopback.Receiver, error) {
	latency, err := time.ParseDuration(cfg.Receiver.SimulatedLatency)
	if err != nil {
		return nil, fmt.Errorf("receiver.simulated_latency: %w", err)
	}
	return loopback.NewReceiver(cfg.Receiver.Workers, latency, handler), nil
}
