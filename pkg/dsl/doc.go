/*
Package dsl provides a Go DSL for programmatically constructing model graphs.

It lets tests and embedding programs describe a model with a fluent builder instead of a model
file. Vertices are identified by their label, so every label used with the builder names exactly
one vertex.

Example usage:

	b := dsl.New()

	b.Start().Go("v_LoggedOut", "e_Init")

	b.Add("v_LoggedOut").
		Requires("REQ-LOGIN").
		Go("v_LoggedIn", "e_Login[valid]/attempts++")

	b.Add("v_LoggedIn").
		Go("v_LoggedOut", "e_Logout")

	graph, err := b.Build()
*/
package dsl
