/*
Package runner drives a form navigator from a line-oriented terminal or an
NDJSON stream.

The runner owns the field inspector: handlers send commands that edit field
values (set, check, hide) or navigate (next, back, goto, click), and the runner
renders the current panel after every command. When a store and a session ID
are configured the navigator snapshot is restored on start and saved after
every transition.

# Usage

	r, err := runner.New(form,
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
		runner.WithStore(store),
		runner.WithSessionID("user-1"),
	)
	if err != nil {
		log.Fatal(err)
	}
	if err := r.Run(ctx); err != nil {
		log.Fatal(err)
	}
*/
package runner
