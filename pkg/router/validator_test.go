package router

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/vango-dev/vroute/pkg/view"
)

func TestNewTableErrors(t *testing.T) {
	tests := []struct {
		name     string
		roots    []*Node
		wantType ConfigErrorType
		wantPath string
	}{
		{
			name:     "page without view",
			roots:    []*Node{NewPage("dashboard", view.Ref{})},
			wantType: ErrorInvalidNode,
			wantPath: "/dashboard",
		},
		{
			name:     "layout without children",
			roots:    []*Node{NewLayout("/", testRef("layout"))},
			wantType: ErrorInvalidNode,
			wantPath: "/",
		},
		{
			name:     "zero node",
			roots:    []*Node{{}},
			wantType: ErrorInvalidNode,
		},
		{
			name:     "nil child",
			roots:    []*Node{NewGroup("/", nil)},
			wantType: ErrorInvalidNode,
		},
		{
			name:     "invalid literal",
			roots:    []*Node{NewPage("top up", testRef("top-up"))},
			wantType: ErrorInvalidSegment,
		},
		{
			name:     "multi-segment literal",
			roots:    []*Node{NewPage("a/b", testRef("ab"))},
			wantType: ErrorInvalidSegment,
		},
		{
			name: "two wildcards among siblings",
			roots: []*Node{NewGroup("/",
				NewPage("*a", testRef("a")),
				NewPage("*b", testRef("b")),
			)},
			wantType: ErrorAmbiguousWildcard,
			wantPath: "/*b",
		},
		{
			name: "wildcard with children",
			roots: []*Node{NewLayout("*rest", testRef("rest"),
				NewPage("x", testRef("x")),
			)},
			wantType: ErrorWildcardChildren,
		},
		{
			name:     "relative redirect",
			roots:    []*Node{NewRedirect("/", "dashboard")},
			wantType: ErrorInvalidRedirect,
		},
		{
			name:     "external redirect",
			roots:    []*Node{NewRedirect("/", "https://example.com/")},
			wantType: ErrorInvalidRedirect,
		},
		{
			name:     "redirect escaping root",
			roots:    []*Node{NewRedirect("/", "/../x")},
			wantType: ErrorInvalidRedirect,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := NewTable(tt.roots...)
			if table != nil {
				t.Error("NewTable() returned a table for invalid input")
			}
			var te *TableError
			if !errors.As(err, &te) {
				t.Fatalf("NewTable() error = %v, want *TableError", err)
			}
			var ce ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("errors.As(ConfigError) failed for %v", err)
			}
			if ce.Type != tt.wantType {
				t.Errorf("Type = %s, want %s (%v)", ce.Type, tt.wantType, err)
			}
			if tt.wantPath != "" && ce.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", ce.Path, tt.wantPath)
			}
		})
	}
}

func TestTableErrorAggregates(t *testing.T) {
	_, err := NewTable(
		NewPage("a b", testRef("x")),
		NewRedirect("/", "nowhere"),
		NewLayout("/", testRef("empty")),
	)
	var te *TableError
	if !errors.As(err, &te) {
		t.Fatalf("error = %v, want *TableError", err)
	}
	if len(te.Errors) != 3 {
		t.Fatalf("len(Errors) = %d, want 3: %v", len(te.Errors), te)
	}
	if !strings.HasPrefix(te.Error(), "3 route table errors:") {
		t.Errorf("Error() = %q", te.Error())
	}
	if te.ErrorCode() != "R010" {
		t.Errorf("ErrorCode() = %q, want R010", te.ErrorCode())
	}
}

func TestConfigErrorCodes(t *testing.T) {
	codes := map[ConfigErrorType]string{
		ErrorInvalidNode:       "R001",
		ErrorInvalidSegment:    "R002",
		ErrorAmbiguousWildcard: "R003",
		ErrorWildcardChildren:  "R004",
		ErrorInvalidRedirect:   "R005",
		ErrorUnknownView:       "R006",
	}
	for typ, want := range codes {
		if got := (ConfigError{Type: typ}).ErrorCode(); got != want {
			t.Errorf("%s code = %q, want %q", typ, got, want)
		}
	}
}

func TestMustTablePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustTable() should panic on an invalid table")
		}
	}()
	MustTable(NewPage("x", view.Ref{}))
}

func TestLint(t *testing.T) {
	table := MustTable(
		NewLayout("/", testRef("layout"),
			NewPage("login", testRef("login")),
			NewPage("login", testRef("login-v2")),
			NewPage("*rest", testRef("error")),
			NewPage("register", testRef("register")),
		),
	)
	warnings := table.Lint()
	if len(warnings) != 2 {
		t.Fatalf("Lint() = %v, want 2 warnings", warnings)
	}
	if warnings[0].Path != "/login" || !strings.Contains(warnings[0].Message, "already matches") {
		t.Errorf("warnings[0] = %v", warnings[0])
	}
	if warnings[1].Path != "/register" || !strings.Contains(warnings[1].Message, "after wildcard /*rest") {
		t.Errorf("warnings[1] = %v", warnings[1])
	}

	if w := appTable(t).Lint(); len(w) != 0 {
		t.Errorf("appTable Lint() = %v, want none", w)
	}
}

func TestLintMountLeaves(t *testing.T) {
	table := MustTable(
		NewLayout("docs", testRef("docs"),
			NewPage("", testRef("docs-index")),
			NewRedirect("", "/docs/intro"),
			NewPage("intro", testRef("intro")),
			NewPage("*path", testRef("docs-page")),
		),
		NewRedirect("/", "/docs"),
		NewLayout("/", testRef("shell"),
			NewPage("home", testRef("home")),
		),
	)

	want := []Warning{
		{Path: "/docs", Message: "unreachable: /docs already matches the empty path"},
		{Path: "/docs/*path", Message: "empty remainder never captured: /docs matches first"},
	}
	if got := table.Lint(); !reflect.DeepEqual(got, want) {
		t.Errorf("Lint() = %v, want %v", got, want)
	}
}
