// Package fluxmesh provides the concurrency and message-passing core of an
// agent orchestration toolkit.
//
// The root Service wires three layers:
//
//   - executor – capacity-bounded execution of work items
//   - worker   – named tasks with retry policies on top of executors
//   - exchange – mail routing between branches and other sources
//
// A typical host application configures the service, submits work and lets
// branches exchange mail:
//
//	srv, _ := fluxmesh.New()
//	_ = srv.Start(ctx)
//	defer srv.Stop()
//	_ = srv.Submit(ctx, work.New("summarize", fn))
//	a, _ := srv.NewBranch("planner")
//	b, _ := srv.NewBranch("critic")
//	_, _ = a.Send(b, mail.CategoryMessage, "draft", nil)
//
// For more details see the individual sub-packages.
package fluxmesh
