// Package dispatch resolves generated step labels to Go code.
//
// Table maps names to functions registered explicitly. Reflect looks names up among
// the exported methods of a test object, so a model's e_/v_ labels can be implemented
// as methods of a struct:
//
//	type LoginTest struct{ client *Client }
//
//	func (t *LoginTest) E_Init() error            { ... }
//	func (t *LoginTest) E_Login(user string) error { ... }
//
// Both satisfy ports.Executor.
package dispatch
