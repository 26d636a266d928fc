package router

import (
	"context"
	"errors"
	"testing"

	"github.com/vango-dev/vroute/pkg/view"
)

func staticSource(ids ...string) *view.StaticSource {
	src := view.NewStaticSource()
	for _, id := range ids {
		src.Register(id, view.LoaderFunc(func(ctx context.Context) (view.Unit, error) {
			return id, nil
		}))
	}
	return src
}

func TestBuild(t *testing.T) {
	specs := []Spec{
		{Path: "/", Redirect: "/dashboard"},
		{Path: "/", View: "layouts/default", Children: []Spec{
			{Path: "dashboard", View: "pages/dashboard"},
		}},
		{Path: "/", View: "layouts/blank", Children: []Spec{
			{Path: "/:pathMatch(.*)*", View: "pages/error"},
		}},
	}
	table, err := Build(specs, staticSource("layouts/default", "pages/dashboard", "layouts/blank", "pages/error"))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	res, err := NewResolver(table).Follow("/")
	if err != nil {
		t.Fatalf("Follow() error = %v", err)
	}
	m := mustMatch(t, res)
	if ref, _ := m.Leaf().View(); ref.ID != "pages/dashboard" {
		t.Errorf("leaf = %q, want pages/dashboard", ref.ID)
	}
	unit, err := m.Views()[1].Load(context.Background())
	if err != nil || unit != "pages/dashboard" {
		t.Errorf("Load() = %v, %v", unit, err)
	}
}

func TestBuildErrors(t *testing.T) {
	specs := []Spec{
		{Path: "/", Redirect: "/x", View: "pages/x"},
		{Path: "/", View: "layouts/missing", Children: []Spec{
			{Path: "empty"},
		}},
	}
	_, err := Build(specs, staticSource("pages/x"))
	var te *TableError
	if !errors.As(err, &te) {
		t.Fatalf("Build() error = %v, want *TableError", err)
	}

	got := make(map[ConfigErrorType]int)
	for _, ce := range te.Errors {
		got[ce.Type]++
	}
	if got[ErrorInvalidNode] != 2 {
		t.Errorf("INVALID_NODE count = %d, want 2 (%v)", got[ErrorInvalidNode], te)
	}
	if got[ErrorUnknownView] != 1 {
		t.Errorf("UNKNOWN_VIEW count = %d, want 1 (%v)", got[ErrorUnknownView], te)
	}
}

func TestBuildWithoutSource(t *testing.T) {
	_, err := Build([]Spec{{Path: "a", View: "a"}}, nil)
	var ce ConfigError
	if !errors.As(err, &ce) || ce.Type != ErrorUnknownView {
		t.Errorf("Build() error = %v, want UNKNOWN_VIEW", err)
	}
}
