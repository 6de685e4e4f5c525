package devserver

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/kiln/internal/adapters/logger"
	"go.trai.ch/kiln/internal/core/ports"
)

const (
	// NodeID is the unique identifier for the dev server Graft node.
	NodeID graft.ID = "adapter.devserver"
	// BrowserNodeID is the unique identifier for the browser launcher Graft node.
	BrowserNodeID graft.ID = "adapter.browser"
)

func init() {
	graft.Register(graft.Node[ports.DevServer]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.DevServer, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewServer(log), nil
		},
	})

	graft.Register(graft.Node[ports.Browser]{
		ID:        BrowserNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Browser, error) {
			return NewBrowser(), nil
		},
	})
}
