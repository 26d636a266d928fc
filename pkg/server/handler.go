package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/vango-dev/vroute/pkg/router"
	"github.com/vango-dev/vroute/pkg/telemetry"
)

// routeJSON describes one node of the table.
type routeJSON struct {
	Pattern  string `json:"pattern"`
	Kind     string `json:"kind"`
	Segment  string `json:"segment"`
	View     string `json:"view,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

// stepJSON describes one node of a match chain.
type stepJSON struct {
	Pattern   string `json:"pattern"`
	View      string `json:"view,omitempty"`
	Remainder string `json:"remainder,omitempty"`
}

// resolveJSON is the /resolve response.
type resolveJSON struct {
	Outcome   string            `json:"outcome"`
	Path      string            `json:"path,omitempty"`
	Query     string            `json:"query,omitempty"`
	Fragment  string            `json:"fragment,omitempty"`
	Chain     []stepJSON        `json:"chain,omitempty"`
	Params    map[string]string `json:"params,omitempty"`
	Redirects []string          `json:"redirects,omitempty"`
	Target    string            `json:"target,omitempty"`
	Error     string            `json:"error,omitempty"`
	Code      string            `json:"code,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok\n"))
}

func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	table := s.resolver.Table()
	if r.URL.Query().Get("format") != "json" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(table.String()))
		return
	}

	out := []routeJSON{}
	for pattern, n := range table.All() {
		rj := routeJSON{Pattern: pattern, Kind: n.Kind().String(), Segment: n.SegmentKind().String()}
		if ref, ok := n.View(); ok {
			rj.View = ref.ID
		}
		if target, ok := n.RedirectTo(); ok {
			rj.Redirect = target
		}
		out = append(out, rj)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	path := q.Get("path")
	if path == "" {
		writeJSON(w, http.StatusBadRequest, resolveJSON{Outcome: "bad_request", Error: "missing path parameter"})
		return
	}
	follow := true
	if v := q.Get("follow"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, resolveJSON{Outcome: "bad_request", Error: "invalid follow parameter"})
			return
		}
		follow = b
	}

	var (
		res router.Result
		err error
	)
	if follow {
		res, err = s.resolver.Follow(path)
	} else {
		res = s.resolver.Resolve(path)
	}
	if err != nil {
		out := resolveJSON{Outcome: telemetry.OutcomeRedirectLoop, Error: err.Error()}
		var loop *router.RedirectLoopError
		if errors.As(err, &loop) {
			out.Path = loop.Path
			out.Redirects = loop.Chain
			out.Code = loop.ErrorCode()
		}
		writeJSON(w, http.StatusOK, out)
		return
	}
	writeJSON(w, http.StatusOK, encodeResult(res))
}

// encodeResult converts a resolution outcome to its JSON form.
func encodeResult(res router.Result) resolveJSON {
	out := resolveJSON{Outcome: res.Outcome()}
	switch res := res.(type) {
	case *router.Match:
		out.Path, out.Query, out.Fragment = res.Path, res.Query, res.Fragment
		out.Params = res.Params
		out.Redirects = res.Redirects
		if res.PathErr != nil {
			out.Error = res.PathErr.Error()
		}
		for _, step := range res.Chain {
			sj := stepJSON{Pattern: step.Node.Pattern(), Remainder: step.Remainder}
			if ref, ok := step.Node.View(); ok {
				sj.View = ref.ID
			}
			out.Chain = append(out.Chain, sj)
		}
	case *router.Redirect:
		out.Path = res.From
		out.Target = res.To
	case *router.NotFound:
		out.Path = res.Path
		if res.Err != nil {
			out.Error = res.Err.Error()
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}
