// Package router resolves navigation paths against a tree of nested routes and
// mounts the matched views.
//
// A [Table] is an ordered list of root [Node]s. Each node has a segment pattern
// and is one of three kinds:
//
//   - a page ([NewPage]): a leaf view
//   - a layout ([NewLayout], [NewGroup]): children, optionally wrapped by a view
//   - a redirect ([NewRedirect]): sends the navigation to another path
//
// Segment patterns are literal ("dashboard"), mount ("" or "/", consumes
// nothing) or wildcard remainder ("*rest", or ":rest(.*)*" as written in route
// files), which swallows every remaining segment.
//
// # Declaration order
//
// Siblings are tried strictly in the order they were declared and the first
// one that matches wins, even when a later sibling would produce a more
// specific match. Declare literal routes before wildcard routes at the same
// level; [Table.Lint] reports siblings that can never match.
//
// # Usage
//
//	table, err := router.NewTable(
//	    router.NewRedirect("/", "/dashboard"),
//	    router.NewLayout("/", defaultLayout,
//	        router.NewPage("dashboard", dashboard),
//	    ),
//	    router.NewLayout("/", blankLayout,
//	        router.NewPage("login", login),
//	        router.NewPage("*pathMatch", notFound),
//	    ),
//	)
//	if err != nil {
//	    log.Fatal(err) // *router.TableError listing every ConfigError
//	}
//
//	res, err := router.NewResolver(table).Follow("/")
//	// res.(*router.Match).Chain: default layout -> dashboard
//
// A [Navigator] adds loading on top of resolution: it follows redirects, loads
// every view in the chain through a loader cache and hands the result to a
// [Renderer].
package router
