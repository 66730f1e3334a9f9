package progressforms

import _ "embed"

// Version is the library version, shared by the CLI and the HTTP info endpoint.
//
//go:embed VERSION
var Version string
