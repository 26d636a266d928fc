// Package errors renders vroute failures as actionable terminal reports.
//
// Library packages return typed errors (router.ConfigError,
// router.RedirectLoopError, loader.LoadError, ...) that expose an
// ErrorCode method. This package maps each code to a registered template and
// formats it for the CLI.
//
// # Error Codes
//
//   - R001-R019: route table configuration
//   - R020-R039: navigation (redirect loops, invalid paths)
//   - R040-R059: view loading
//   - R060-R079: project configuration files
//   - R080-R099: CLI and server
//
// # Usage
//
//	err := errors.New("R061").
//	    Wrap(parseErr).
//	    WithLocation("vroute.toml", 4, 8).
//	    WithSuggestion("Check that vroute.toml is valid TOML")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR R061  Configuration parse error
//	//
//	//   vroute.toml:4:8
//	//
//	//        2 │ [[routes]]
//	//        3 │ path = "/"
//	//   →    4 │ view = pages/home
//	//          │        ^
//	//
//	//   • toml: expected value but found "pages"
//	//
//	//   Hint: Check that vroute.toml is valid TOML
//
// A route table failure (R010) lists each offending route path next to its
// problem, and a redirect loop (R020) lists every hop in order. Set
// SetColor(false), or NO_COLOR in the environment, for plain output.
package errors
