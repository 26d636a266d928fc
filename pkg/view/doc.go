// Package view describes loadable view units.
//
// A [Ref] is inert: it names a view and knows how to load it, but nothing is
// fetched until a loader cache asks for it. Sources turn configured view ids
// into refs backed by a directory ([DirSource]), an S3 bucket ([S3Source]) or
// in-memory loaders ([StaticSource]).
//
//	src := view.NewDirSource(os.DirFS("web/views"), ".vue")
//	ref := src.Ref("pages/dashboard")
//	unit, err := ref.Load(ctx) // reads web/views/pages/dashboard.vue
package view
