package router

import (
	"context"
	"testing"

	"github.com/vango-dev/vroute/pkg/view"
)

// testRef returns a ref whose unit is its own id.
func testRef(id string) view.Ref {
	return view.NewRef(id, func(ctx context.Context) (view.Unit, error) {
		return id, nil
	})
}

func TestParsePattern(t *testing.T) {
	tests := []struct {
		pattern  string
		wantKind SegmentKind
		wantName string
		wantErr  bool
	}{
		{"", SegmentMount, "", false},
		{"/", SegmentMount, "", false},
		{"dashboard", SegmentLiteral, "dashboard", false},
		{"/login", SegmentLiteral, "login", false},
		{"top-up/", SegmentLiteral, "top-up", false},
		{"*", SegmentWildcard, "rest", false},
		{"*pathMatch", SegmentWildcard, "pathMatch", false},
		{"/:pathMatch(.*)*", SegmentWildcard, "pathMatch", false},
		{":all(.*)", SegmentWildcard, "all", false},
		{"*bad-name", SegmentWildcard, "bad-name", true},
		{":id", SegmentLiteral, ":id", true},
		{"users/list", SegmentLiteral, "users/list", true},
		{"a b", SegmentLiteral, "a b", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			kind, name, err := parsePattern(tt.pattern)
			if kind != tt.wantKind {
				t.Errorf("kind = %v, want %v", kind, tt.wantKind)
			}
			if name != tt.wantName {
				t.Errorf("name = %q, want %q", name, tt.wantName)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNodeAccessors(t *testing.T) {
	page := NewPage("dashboard", testRef("pages/dashboard"))
	if page.Kind() != KindPage {
		t.Errorf("Kind() = %v, want page", page.Kind())
	}
	if ref, ok := page.View(); !ok || ref.ID != "pages/dashboard" {
		t.Errorf("View() = %v, %v", ref, ok)
	}
	if _, ok := page.RedirectTo(); ok {
		t.Error("page should not report a redirect")
	}

	red := NewRedirect("/", "/dashboard")
	if target, ok := red.RedirectTo(); !ok || target != "/dashboard" {
		t.Errorf("RedirectTo() = %q, %v", target, ok)
	}
	if _, ok := red.View(); ok {
		t.Error("redirect should not report a view")
	}
	if red.SegmentKind() != SegmentMount {
		t.Errorf("SegmentKind() = %v, want mount", red.SegmentKind())
	}

	group := NewGroup("admin", page)
	if _, ok := group.View(); ok {
		t.Error("group should not report a view")
	}
	children := group.Children()
	children[0] = nil
	if group.Children()[0] == nil {
		t.Error("Children() must return a copy")
	}
}

func TestNodeMatch(t *testing.T) {
	layout := NewLayout("/", testRef("layout"),
		NewPage("dashboard", testRef("dashboard")),
		NewPage("*rest", testRef("error")),
	)

	tests := []struct {
		name      string
		segs      []string
		wantOK    bool
		wantDepth int
		wantLeaf  string
	}{
		{"literal child", []string{"dashboard"}, true, 2, "dashboard"},
		{"wildcard child", []string{"x", "y"}, true, 2, "*rest"},
		{"zero segments uses wildcard child", nil, true, 2, "*rest"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain, ok := layout.match(tt.segs)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if len(chain) != tt.wantDepth {
				t.Fatalf("depth = %d, want %d", len(chain), tt.wantDepth)
			}
			if got := chain[len(chain)-1].Node.Pattern(); got != tt.wantLeaf {
				t.Errorf("leaf = %q, want %q", got, tt.wantLeaf)
			}
		})
	}

	page := NewPage("login", testRef("login"))
	if _, ok := page.match([]string{"login", "extra"}); ok {
		t.Error("a page must not match with segments left over")
	}
	if _, ok := page.match([]string{"Login"}); ok {
		t.Error("literal matching must be case-sensitive")
	}
}

func TestNodeString(t *testing.T) {
	tests := []struct {
		node *Node
		want string
	}{
		{NewPage("login", testRef("pages/login")), "page login view=pages/login"},
		{NewRedirect("/", "/dashboard"), "redirect / -> /dashboard"},
		{NewGroup("", NewPage("a", testRef("a"))), `layout ""`},
	}
	for _, tt := range tests {
		if got := tt.node.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
