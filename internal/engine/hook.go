package engine

// DayHookPos identifies where in the day loop a hook fires.
type DayHookPos struct {
	Name string
}

// DayHookPosBeforeDay fires before a day's SSA/E1/E2/post-step phases run.
var DayHookPosBeforeDay = &DayHookPos{Name: "BeforeDay"}

// DayHookPosAfterDay fires after a day's snapshot and buffer swap.
var DayHookPosAfterDay = &DayHookPos{Name: "AfterDay"}

// DayHookCtx is the context passed to a DayHook at the site it fires.
type DayHookCtx struct {
	Pos    *DayHookPos
	Day    int
	Tt     float64
	TSpan0 float64
	TSpanN float64
}

// DayHook is a short piece of program invoked by the day loop once per
// day, once per position. Used for progress reporting (spec §6).
type DayHook interface {
	Func(ctx DayHookCtx)
}

// Hookable is carried over from the teacher's Hookable/HookableBase pair
// (sarchlab-akita/sim/hook.go), generalized from per-event hook positions
// to per-day hook positions: the day loop, not an arbitrary event
// handler, is what callers want to observe here.
type Hookable struct {
	hooks []DayHook
}

// AcceptHook registers a hook to be invoked on every subsequent day.
func (h *Hookable) AcceptHook(hook DayHook) {
	h.hooks = append(h.hooks, hook)
}

// InvokeHook calls every registered hook with ctx, in registration order.
func (h *Hookable) InvokeHook(ctx DayHookCtx) {
	for _, hook := range h.hooks {
		hook.Func(ctx)
	}
}
