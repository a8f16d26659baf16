package metadata

import "fmt"

/** @brief The name of the per-instance model matrix uniform. */
const MODEL_MATRIX_UNIFORM_NAME string = "cue_model_mat"

/** @brief Location returned when a uniform does not exist in a pipeline. */
const InvalidUniformLocation int32 = -1

/** @brief A compiled shader pipeline as known to the resource layer. */
type Pipeline struct {
	Handle PipelineHandle
	Name   string
}

/**
 * @brief The value kinds a per-instance shader parameter can take. Each kind
 * maps to exactly one backend upload call.
 */
type ParamKind uint8

const (
	ParamFloat1 ParamKind = iota
	ParamFloat2
	ParamFloat3
	ParamFloat4
	ParamInt1
	ParamInt2
	ParamInt3
	ParamInt4
	paramKindCount
)

// ParamKindCount is the number of valid ParamKind values.
const ParamKindCount = int(paramKindCount)

// Components returns the number of scalars a value of this kind carries.
func (k ParamKind) Components() int {
	if k >= paramKindCount {
		return 0
	}
	return int(k%4) + 1
}

func (k ParamKind) IsFloat() bool {
	return k <= ParamFloat4
}

func (k ParamKind) String() string {
	if k >= paramKindCount {
		return fmt.Sprintf("ParamKind(%d)", uint8(k))
	}
	if k.IsFloat() {
		return fmt.Sprintf("float%d", k.Components())
	}
	return fmt.Sprintf("int%d", k.Components())
}

/**
 * @brief A tagged union of the parameter value kinds. Only the slots of the
 * array matching Kind are meaningful.
 */
type ParamValue struct {
	Kind ParamKind
	F    [4]float32
	I    [4]int32
}

func Float1(x float32) ParamValue { return ParamValue{Kind: ParamFloat1, F: [4]float32{x}} }
func Float2(x, y float32) ParamValue {
	return ParamValue{Kind: ParamFloat2, F: [4]float32{x, y}}
}
func Float3(x, y, z float32) ParamValue {
	return ParamValue{Kind: ParamFloat3, F: [4]float32{x, y, z}}
}
func Float4(x, y, z, w float32) ParamValue {
	return ParamValue{Kind: ParamFloat4, F: [4]float32{x, y, z, w}}
}
func Int1(x int32) ParamValue { return ParamValue{Kind: ParamInt1, I: [4]int32{x}} }
func Int2(x, y int32) ParamValue {
	return ParamValue{Kind: ParamInt2, I: [4]int32{x, y}}
}
func Int3(x, y, z int32) ParamValue {
	return ParamValue{Kind: ParamInt3, I: [4]int32{x, y, z}}
}
func Int4(x, y, z, w int32) ParamValue {
	return ParamValue{Kind: ParamInt4, I: [4]int32{x, y, z, w}}
}

/**
 * @brief A per-instance override of a shader parameter. Location is the slot
 * obtained from shader reflection for the pipeline of the owning draw state.
 */
type ParamOverride struct {
	Location int32
	Value    ParamValue
}
