/*
Package progressforms is a multi-step form controller: it splits a form into ordered panels,
keeps exactly one of them active, mirrors progress on a row of indicators and gates forward
navigation on per-panel validation.

The navigator owns only navigation state. Field values stay with the host, which exposes them
through a ports.FieldInspector, so the same core drives a terminal wizard, an HTTP API or a
browser front-end.

# Concept

A form is a sequence of panels. Moving forward runs the validation gate on the panel being left:

 1. required fields that are visible and empty fail, in declaration order;
 2. groups with fewer satisfied members than their minimum blame their first member;
 3. the panel's custom validator, if any, has the last word.

Moving backward never validates. Jumps walk one panel at a time, so a forward jump stops on
the first panel that does not pass. A panel is marked previously validated the first time it is
left through a successful forward step and stays marked for the life of the navigator.

# Usage

	form, _ := dsl.New("signup").
		Panel("account").Required("email", domain.FieldEmail).
		Panel("done").
		Form()

	values := memory.NewInspector(nil)
	nav, err := progressforms.New(form, values,
		progressforms.WithCallbacks(domain.Callbacks{
			OnValidationFailed: func(f domain.FieldRef) { fmt.Println("missing", f.Name) },
		}),
	)
	if err != nil {
		log.Fatal(err)
	}

	nav.Advance() // missing email
	values.Set("email", "ada@example.com")
	nav.Advance() // now on "done"
*/
package progressforms
