package output

import (
	"context"
	"time"

	"solarcalc/internal/domain/entity"
)

// GatewayPort is the capability interface over the remote browser-automation
// backend. Side effects are entirely external: the only observation channel
// is the returned result or a subsequent read action. Implementations
// report outcomes and never retry; retry policy lives in the orchestrator.
type GatewayPort interface {
	Perform(ctx context.Context, req entity.ActionRequest, timeout time.Duration) entity.ActionResult
	Close()
}
