package assets

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/kiln/internal/adapters/fs"
	"go.trai.ch/kiln/internal/adapters/shell"
	"go.trai.ch/kiln/internal/core/ports"
)

const (
	// ToolkitNodeID is the unique identifier for the transformer toolkit Graft node.
	ToolkitNodeID graft.ID = "adapter.assets.toolkit"
	// InjectorNodeID is the unique identifier for the index injector Graft node.
	InjectorNodeID graft.ID = "adapter.assets.injector"
)

func init() {
	graft.Register(graft.Node[*Toolkit]{
		ID:        ToolkitNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{shell.NodeID, fs.HasherNodeID},
		Run: func(ctx context.Context) (*Toolkit, error) {
			runner, err := graft.Dep[ports.CommandRunner](ctx)
			if err != nil {
				return nil, err
			}
			hasher, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}
			return NewToolkit(runner, hasher), nil
		},
	})

	graft.Register(graft.Node[ports.Injector]{
		ID:        InjectorNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Injector, error) {
			return NewInjector(), nil
		},
	})
}
