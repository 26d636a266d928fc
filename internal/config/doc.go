// Package config loads vroute project configuration.
//
// The configuration lives in vroute.json or vroute.toml at the project root.
// Missing values fall back to defaults; routes fall back to the built-in
// application table when the file declares none.
//
// # Configuration File Structure
//
//	name = "admin"
//	maxRedirects = 10
//	fallbackPath = "/dashboard"
//
//	[source]
//	kind = "dir"
//	dir = "views"
//	ext = ".html"
//
//	[server]
//	addr = ":8080"
//
//	[log]
//	level = "info"
//	format = "text"
//
//	[[routes]]
//	path = "/"
//	redirect = "/dashboard"
//
//	[[routes]]
//	path = "/"
//	view = "layouts/default"
//
//	  [[routes.children]]
//	  path = "dashboard"
//	  view = "pages/dashboard"
//
// # Usage
//
//	cfg, err := config.LoadFromWorkingDir()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("Addr:", cfg.Server.Addr)
package config
