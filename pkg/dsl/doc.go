/*
Package dsl provides a fluent builder for constructing progressforms definitions in Go.

It is an alternative to YAML, JSON or markdown definitions, useful for tests,
generated forms and IDE autocompletion.

Example usage:

	b := dsl.New("signup").Title("Create your account")

	b.Panel("account").
		Title("Account").
		Required("email", domain.FieldEmail).
		Required("password", domain.FieldPassword).
		Required("confirm", domain.FieldPassword).
		Check(`values["password"] == values["confirm"]`, "confirm")

	b.Panel("interests").
		Title("Interests").
		Group("topics", 2, "go", "rust", "zig")

	b.Panel("done").Title("All set")

	form, err := b.Form()
	// ... pass form to progressforms.New(form, inspector)
*/
package dsl
