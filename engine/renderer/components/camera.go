package components

import (
	"github.com/spaghettifunk/oncue/engine/math"
	"github.com/spaghettifunk/oncue/engine/renderer"
	"github.com/spaghettifunk/oncue/engine/renderer/metadata"
	"github.com/spaghettifunk/oncue/engine/renderer/scene"
)

type ProjectionType uint8

const (
	ProjectionPerspective ProjectionType = iota
	ProjectionOrthographic
)

/**
 * @brief Represents a camera that can be used for
 * a variety of things, especially rendering. A camera draws a
 * scene into a framebuffer, or into the screen.
 */
type Camera struct {
	/**
	 * @brief The position of this camera.
	 * NOTE: Do not set this directly, use SetPosition() instead
	 * so the view matrix is recalculated when needed.
	 */
	Position math.Vec3
	/**
	 * @brief The rotation of this camera using Euler angles (pitch, yaw, roll).
	 * NOTE: Do not set this directly, use SetEulerRotation() instead
	 * so the view matrix is recalculated when needed.
	 */
	EulerRotation math.Vec3
	/** @brief Internal flag used to determine when the view matrix needs to be rebuilt. */
	IsDirty bool
	/**
	 * @brief The view matrix of this camera.
	 * NOTE: IMPORTANT: Do not get this directly, use GetView() instead
	 * so the view matrix is recalculated when needed.
	 */
	ViewMatrix math.Mat4

	Projection ProjectionType
	/** @brief Vertical field of view in radians. Perspective only. */
	FOV float32
	/** @brief Height of the visible area in world units. Orthographic only. */
	ViewSize float32
	Near     float32
	Far      float32
	/** @brief The colour the target is cleared to before the scene is drawn. */
	ClearColour math.Vec4
}

/** @brief The name of the default camera. */
const DEFAULT_CAMERA_NAME string = "default"

func NewCamera() *Camera {
	camera := &Camera{}
	camera.Reset()
	return camera
}

func (c *Camera) Reset() {
	c.EulerRotation = math.NewVec3Zero()
	c.Position = math.NewVec3Zero()
	c.IsDirty = false
	c.ViewMatrix = math.NewMat4Identity()
	c.Projection = ProjectionPerspective
	c.FOV = math.DegToRad(45.0)
	c.ViewSize = 10.0
	c.Near = 0.1
	c.Far = 1000.0
	c.ClearColour = math.NewVec4(0, 0, 0, 1)
}

func (c *Camera) GetPosition() math.Vec3 {
	return c.Position
}

func (c *Camera) SetPosition(position math.Vec3) {
	c.Position = position
	c.IsDirty = true
}

func (c *Camera) GetEulerRotation() math.Vec3 {
	return c.EulerRotation
}

func (c *Camera) SetEulerRotation(rotation math.Vec3) {
	c.EulerRotation = rotation
	c.IsDirty = true
}

// LookAt points the camera at target and replaces the euler rotation.
func (c *Camera) LookAt(target math.Vec3) {
	dir := target.Sub(c.Position).Normalized()
	pitch := math.Asin(math.Clamp(dir.Y, -1, 1))
	yaw := math.Atan2(-dir.X, -dir.Z)
	c.SetEulerRotation(math.NewVec3(pitch, yaw, 0))
}

func (c *Camera) GetView() math.Mat4 {
	if c.IsDirty {
		rotation := math.NewMat4EulerXYZ(c.EulerRotation.X, c.EulerRotation.Y, c.EulerRotation.Z)
		translation := math.NewMat4Translation(c.Position)

		c.ViewMatrix = rotation.Mul(translation)
		c.ViewMatrix = c.ViewMatrix.Inverse()

		c.IsDirty = false
	}
	return c.ViewMatrix
}

// GetProjection builds the projection for a target of the given size.
func (c *Camera) GetProjection(width, height uint32) math.Mat4 {
	aspect := float32(1)
	if height > 0 {
		aspect = float32(width) / float32(height)
	}
	if c.Projection == ProjectionOrthographic {
		halfH := c.ViewSize / 2
		halfW := halfH * aspect
		return math.NewMat4Orthographic(-halfW, halfW, -halfH, halfH, c.Near, c.Far)
	}
	return math.NewMat4Perspective(c.FOV, aspect, c.Near, c.Far)
}

// Forward is the direction the camera looks along, in world space.
func (c *Camera) Forward() math.Vec3 {
	world := c.GetView().Inverse()
	return math.NewVec3(-world.Data[8], -world.Data[9], -world.Data[10]).Normalized()
}

func (c *Camera) Right() math.Vec3 {
	world := c.GetView().Inverse()
	return math.NewVec3(world.Data[0], world.Data[1], world.Data[2]).Normalized()
}

func (c *Camera) MoveForward(amount float32) {
	c.Position = c.Position.Add(c.Forward().MulScalar(amount))
	c.IsDirty = true
}

func (c *Camera) MoveRight(amount float32) {
	c.Position = c.Position.Add(c.Right().MulScalar(amount))
	c.IsDirty = true
}

func (c *Camera) MoveUp(amount float32) {
	c.Position = c.Position.Add(math.NewVec3(0, amount, 0))
	c.IsDirty = true
}

func (c *Camera) Yaw(amount float32) {
	c.EulerRotation.Y += amount
	c.IsDirty = true
}

func (c *Camera) Pitch(amount float32) {
	c.EulerRotation.X += amount

	// Clamp to avoid Gimbal lock.
	limit := float32(1.55334306) // 89 degrees, or equivalent to deg_to_rad(89.0f);
	c.EulerRotation.X = math.Clamp(c.EulerRotation.X, -limit, limit)

	c.IsDirty = true
}

/**
 * @brief Draws the scene from this camera into the framebuffer, or into the
 * screen when fb is nil. Every render target the scene samples is resolved
 * first, so their outputs are ready before they are bound.
 */
func (c *Camera) ViewFrame(r *renderer.Renderer, fb *metadata.Framebuffer, sc *scene.RenderScene) {
	sc.TryViewDeps()

	r.FramebufferBind(fb)
	r.Clear(c.ClearColour, metadata.CLEAR_COLOUR_BUFFER_FLAG|metadata.CLEAR_DEPTH_BUFFER_FLAG)

	width, height := r.Size()
	width, height = fb.Viewport(width, height)
	view := c.GetView()
	r.SetCameraUniforms(metadata.CameraUniforms{
		View:       view,
		Projection: c.GetProjection(width, height),
		Position:   c.Position,
	})

	sc.Frame(view)
}
