package scheduler

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/droidnet/internal/adapters/cas"       //nolint:depguard // Wired in engine wiring
	"go.trai.ch/droidnet/internal/adapters/fs"        //nolint:depguard // Wired in engine wiring
	"go.trai.ch/droidnet/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/droidnet/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/droidnet/internal/core/ports"
)

// NodeID is the unique identifier for the scheduler Graft node.
const NodeID graft.ID = "engine.scheduler"

func init() {
	graft.Register(graft.Node[*Scheduler]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			cas.NodeID,
			fs.HasherNodeID,
			fs.ResolverNodeID,
			telemetry.TracerNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Scheduler, error) {
			store, err := graft.Dep[ports.BuildInfoStore](ctx)
			if err != nil {
				return nil, err
			}

			hasher, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}

			resolver, err := graft.Dep[ports.InputResolver](ctx)
			if err != nil {
				return nil, err
			}

			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewScheduler(store, hasher, resolver, tracer, log), nil
		},
	})
}
