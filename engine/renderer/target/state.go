package target

import "fmt"

/** @brief Where a render target is in its once-per-frame resolution. */
type ResolutionState uint8

const (
	/** @brief Not viewed yet this frame. */
	Unresolved ResolutionState = iota
	/** @brief Currently being rendered, further up the call stack. */
	InProgress
	/** @brief Reached again while rendering; its output was cleared to break the cycle. */
	InProgressRecursed
	/** @brief Rendered this frame; the output can be sampled as is. */
	Resolved
)

func (s ResolutionState) String() string {
	switch s {
	case Unresolved:
		return "unresolved"
	case InProgress:
		return "in_progress"
	case InProgressRecursed:
		return "in_progress_recursed"
	case Resolved:
		return "resolved"
	}
	return fmt.Sprintf("ResolutionState(%d)", uint8(s))
}

type action uint8

const (
	actionNone action = iota
	actionRender
	actionClear
)

// transition returns the state a TryResolve call moves to and the work it performs.
func transition(s ResolutionState) (ResolutionState, action) {
	switch s {
	case Unresolved:
		return InProgress, actionRender
	case InProgress:
		return InProgressRecursed, actionClear
	default:
		return s, actionNone
	}
}
