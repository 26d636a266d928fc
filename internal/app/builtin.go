package app

import (
	"context"
	"fmt"

	"github.com/vango-dev/vroute/pkg/router"
	"github.com/vango-dev/vroute/pkg/view"
)

// BuiltinRoutes returns the route table used when the configuration declares
// none: the admin application with its default and blank layouts.
func BuiltinRoutes() []router.Spec {
	return []router.Spec{
		{Path: "/", Redirect: "/dashboard"},
		{
			Path: "/",
			View: "layouts/default",
			Children: []router.Spec{
				{Path: "dashboard", View: "pages/dashboard"},
				{Path: "item", View: "pages/items"},
				{Path: "transaksi", View: "pages/transaksi"},
				{Path: "category-item", View: "pages/category-item"},
				{Path: "stock-item", View: "pages/stock-item"},
				{Path: "typography", View: "pages/typography"},
				{Path: "top-up", View: "pages/top-up"},
				{Path: "pelanggan", View: "pages/pelanggan"},
				{Path: "form-layouts", View: "pages/form-layouts"},
			},
		},
		{
			Path: "/",
			View: "layouts/blank",
			Children: []router.Spec{
				{Path: "login", View: "pages/login"},
				{Path: "register", View: "pages/register"},
				{Path: "/:pathMatch(.*)*", View: "pages/[...error]"},
			},
		},
	}
}

// BuiltinSource serves a placeholder module for every view of specs. It lets
// the built-in table be resolved and loaded without any view files.
func BuiltinSource(specs []router.Spec) *view.StaticSource {
	src := view.NewStaticSource()
	for _, id := range viewIDs(specs) {
		src.Register(id, view.LoaderFunc(func(ctx context.Context) (view.Unit, error) {
			return &view.Module{
				ID:          id,
				Key:         id,
				Body:        []byte(fmt.Sprintf("<!-- %s -->\n", id)),
				ContentType: "text/html; charset=utf-8",
			}, nil
		}))
	}
	return src
}

// viewIDs lists the view ids of specs in declaration order.
func viewIDs(specs []router.Spec) []string {
	var ids []string
	for _, s := range specs {
		if s.View != "" {
			ids = append(ids, s.View)
		}
		ids = append(ids, viewIDs(s.Children)...)
	}
	return ids
}
