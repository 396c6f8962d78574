package apiinfo

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/droidnet/internal/core/ports"
)

// NodeID is the unique identifier for the api info lookup Graft node.
const NodeID graft.ID = "adapter.apiinfo"

func init() {
	graft.Register(graft.Node[ports.APIInfoLookup]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.APIInfoLookup, error) {
			return NewLookup(), nil
		},
	})
}
