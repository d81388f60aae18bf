package event

import (
	"github.com/l1jgo/lazytile/internal/content"
	"github.com/l1jgo/lazytile/internal/coord"
)

// Lifecycle events emitted by the lazy manager.

type InstanceMaterialized struct {
	Coord      coord.Coord
	Descriptor content.Descriptor
}

type InstanceDestroyed struct {
	Coord      coord.Coord
	Descriptor content.Descriptor
}

// ViewportApplied is emitted after a full visibility pass.
type ViewportApplied struct {
	Bounds   coord.TileRect // buffered tile rectangle that was queried
	Appeared int            // coordinates materialized
	Vanished int            // coordinates torn down
	Active   int            // active coordinates after the pass
}
