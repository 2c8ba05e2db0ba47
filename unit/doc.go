// Package unit encapsulates single-use workers with a declared attribute contract.
//
// A worker embeds Base and declares which named inputs it requires, which are
// optional and which inherited names it skips. Construction validates the bag
// against the contract, binds the matching values and runs the post-bind hooks.
// Running a worker captures the produced value so callers can inspect Success
// and Errors uniformly on any worker.
//
//	type CreateUser struct {
//		unit.Base
//	}
//
//	var createUserContract = unit.Declare(
//		unit.Requires("params"),
//		unit.Optional("notify"),
//	)
//
//	func (c *CreateUser) Contract() *unit.Contract { return createUserContract }
//
//	func (c *CreateUser) Execute(ctx context.Context) (interface{}, error) {
//		return users.Create(ctx, c.Get("params").(unit.Attrs))
//	}
//
//	ran, err := unit.Run(ctx, &CreateUser{}, bag)
package unit
