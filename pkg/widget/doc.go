// Package widget is the declaration and resolution engine for page models.
//
// Pages are described as view classes holding named widget declarations.
// Declarations are descriptors: blueprints numbered at creation so that
// declaration order survives Go map iteration. Instances are built lazily,
// once per (view instance, descriptor), and re-locate their elements on every
// call by walking up to the nearest ancestor with a locator.
//
//	var Login = widget.DefineView("Login",
//	    widget.WithRoot("#login"),
//	    widget.WithFields(widget.Fields{
//	        "username": widgets.NewTextInput("#user"),
//	        "remember": widgets.NewCheckbox("#remember"),
//	    }),
//	)
//
//	view, err := Login.Open(b)
//	changed, err := view.Fill(map[string]any{"username": "alice", "remember": true})
//
// Beyond plain views the package provides parametrized view families
// (Parameters, ParametrizedRequest), condition-driven variants
// (ConditionalView) and pluggable fill strategies (DefaultFillStrategy,
// WaitFillStrategy).
package widget
