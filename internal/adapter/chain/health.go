package chain

import "context"

// HealthCheck implements ports.HealthChecker for the EVM node.
type HealthCheck struct {
	gw *Gateway
}

// NewHealthCheck creates a chain health checker.
func NewHealthCheck(gw *Gateway) *HealthCheck {
	return &HealthCheck{gw: gw}
}

// Ping checks node connectivity by fetching the head height.
func (h *HealthCheck) Ping(ctx context.Context) error {
	_, err := h.gw.BlockNumber(ctx)
	return err
}

// Name returns the dependency name.
func (h *HealthCheck) Name() string {
	return "chain"
}
