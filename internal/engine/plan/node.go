package plan

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/droidnet/internal/adapters/apiinfo"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/droidnet/internal/adapters/archive"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/droidnet/internal/adapters/fs"       //nolint:depguard // Wired in engine wiring
	"go.trai.ch/droidnet/internal/adapters/logger"   //nolint:depguard // Wired in engine wiring
	"go.trai.ch/droidnet/internal/adapters/manifest" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/droidnet/internal/adapters/shell"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/droidnet/internal/core/ports"
)

// NodeID is the unique identifier for the plan builder Graft node.
const NodeID graft.ID = "engine.plan"

func init() {
	graft.Register(graft.Node[*Builder]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			shell.NodeID,
			fs.ResolverNodeID,
			fs.CopierNodeID,
			manifest.NodeID,
			apiinfo.NodeID,
			archive.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Builder, error) {
			invoker, err := graft.Dep[ports.ProcessInvoker](ctx)
			if err != nil {
				return nil, err
			}
			resolver, err := graft.Dep[ports.InputResolver](ctx)
			if err != nil {
				return nil, err
			}
			copier, err := graft.Dep[ports.TreeCopier](ctx)
			if err != nil {
				return nil, err
			}
			reader, err := graft.Dep[ports.ManifestReader](ctx)
			if err != nil {
				return nil, err
			}
			lookup, err := graft.Dep[ports.APIInfoLookup](ctx)
			if err != nil {
				return nil, err
			}
			extractor, err := graft.Dep[ports.ArchiveExtractor](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewBuilder(invoker, resolver, reader, lookup, copier, extractor, log), nil
		},
	})
}
