package batch

import (
	"github.com/spaghettifunk/oncue/engine/math"
	"github.com/spaghettifunk/oncue/engine/renderer/metadata"
)

// TransformRef supplies the world matrix of an instance. *math.Transform satisfies it.
type TransformRef interface {
	GetWorld() math.Mat4
}

/**
 * @brief One placed drawable. Identity is the pointer: two instances with the
 * same field values are still distinct. Scenes only hold references, so the
 * owner must keep the transform and the referenced resources alive while the
 * instance is registered.
 */
type DrawInstance struct {
	state  DrawState
	opaque bool

	/** @brief Optional. A nil transform places the instance at the origin and uploads no model matrix. */
	Transform TransformRef
	/** @brief Per-instance shader parameter overrides, uploaded in order. */
	Params []metadata.ParamOverride
}

func NewDrawInstance(state DrawState, transform TransformRef, opaque bool, params ...metadata.ParamOverride) *DrawInstance {
	return &DrawInstance{
		state:     state,
		opaque:    opaque,
		Transform: transform,
		Params:    params,
	}
}

func (i *DrawInstance) State() DrawState {
	return i.state
}

func (i *DrawInstance) IsOpaque() bool {
	return i.opaque
}

// SetParam replaces the override for location, or adds it.
func (i *DrawInstance) SetParam(location int32, value metadata.ParamValue) {
	for n := range i.Params {
		if i.Params[n].Location == location {
			i.Params[n].Value = value
			return
		}
	}
	i.Params = append(i.Params, metadata.ParamOverride{Location: location, Value: value})
}

// WorldPosition returns the translation of the world matrix.
func (i *DrawInstance) WorldPosition() math.Vec3 {
	if i.Transform == nil {
		return math.NewVec3Zero()
	}
	return i.Transform.GetWorld().Position()
}

// ViewDepth is the distance in front of the camera along its view axis.
// Larger values are farther away.
func (i *DrawInstance) ViewDepth(view math.Mat4) float32 {
	return -i.WorldPosition().Transform(view).Z
}
