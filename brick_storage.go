package hydrobricks

// StorageBrick is a generic reservoir: one water container, any
// number of outflow/ET processes.
type StorageBrick struct {
	baseBrick
}

func NewStorageBrick(name string) *StorageBrick {
	return &StorageBrick{baseBrick: newBaseBrick(name, BrickStorage, NewContainer(name))}
}

// Water returns the brick's sole container.
func (b *StorageBrick) Water() *Container { return b.containers[0] }

// GenericSurfaceBrick is a degenerate surface component (generic
// surface, vegetation, or urban) with just a water container — they
// share this implementation since the source shows no behavioural
// difference between them, only a label.
type GenericSurfaceBrick struct {
	baseBrick
}

func NewGenericSurfaceBrick(name string, kind BrickKind) *GenericSurfaceBrick {
	return &GenericSurfaceBrick{baseBrick: newBaseBrick(name, kind, NewContainer(name))}
}

func (b *GenericSurfaceBrick) Water() *Container { return b.containers[0] }
