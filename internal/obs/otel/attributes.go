package otel

import "go.opentelemetry.io/otel/attribute"

// Attributes annotating form metrics.
var (
	// AttrForm names the form: import, confirm_import, export, export_action
	AttrForm = attribute.Key("porter.form")

	// AttrResource is the admin resource the form was submitted for
	AttrResource = attribute.Key("porter.resource")

	// AttrResult is valid or invalid
	AttrResult = attribute.Key("porter.result")

	// AttrField is the field an error was reported on; __all__ for non-field errors
	AttrField = attribute.Key("porter.field")

	// AttrFormat is the resolved format name
	AttrFormat = attribute.Key("porter.format")

	// AttrStreaming indicates a large dataset export request
	AttrStreaming = attribute.Key("porter.streaming")
)
