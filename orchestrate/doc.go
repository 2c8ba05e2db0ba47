// Package orchestrate composes workers into a single transactional pipeline.
//
// An orchestrator is declared once, as an immutable definition holding its own
// attribute contract, an ordered list of steps and a transaction mode. Each
// step names a worker factory, remaps the orchestrator's bound inputs onto the
// names the worker expects and optionally guards execution with a predicate.
//
//	var publishPost = orchestrate.Define(
//		unit.Declare(unit.Requires("post_params", "author")),
//		orchestrate.Mode(orchestrate.TxRollbackOnFailure),
//		orchestrate.InAtomicScope(),
//		orchestrate.Steps(
//			orchestrate.NewStep("create-post", newCreatePost,
//				orchestrate.Remap("post_params", "params"),
//				orchestrate.Remap("author", "user"),
//			),
//			orchestrate.NewStep("notify-followers", newNotifyFollowers,
//				orchestrate.Remap("author", "user"),
//				orchestrate.Unless(isDraft),
//			),
//		),
//	)
//
//	o := orchestrate.New(publishPost, orchestrate.WithScope(txProvider))
//	ran, err := unit.Run(ctx, o, bag)
//
// Steps run strictly in declaration order on the calling goroutine. The
// orchestrator's produced value is the value of the last step that actually
// ran, guarded steps that were skipped contribute nothing. Step failures are
// soft: they accumulate on the orchestrator and, depending on the transaction
// mode, may void the durable effects of the run through the atomic scope.
package orchestrate
