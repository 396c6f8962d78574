package shell

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/droidnet/internal/adapters/logger"
	"go.trai.ch/droidnet/internal/core/ports"
)

// NodeID is the unique identifier for the process invoker Graft node.
const NodeID graft.ID = "adapter.invoker"

func init() {
	graft.Register(graft.Node[ports.ProcessInvoker]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.ProcessInvoker, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewInvoker(log), nil
		},
	})
}
