// Package trace is the event log of the shady pipeline.
//
// Events are spans (begin/end pairs) and points, tagged with a scope:
//
//   - ScopeDriver: CLI commands and pipeline runs
//   - ScopeProgram: build, liveness and render of one program
//   - ScopeConstruct: begin/end of if, for, while, switch and func
//   - ScopeNode: node allocation
//
// The level decides which scopes are written: phase keeps driver and program
// events, detail adds constructs, debug adds nodes.
//
// Tracers travel through context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeProgram, "render", trace.CurrentSpan(ctx))
//	defer span.End("")
package trace
