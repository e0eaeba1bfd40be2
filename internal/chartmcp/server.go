// Package chartmcp exposes chart computation and rule evaluation as MCP
// tools so assistants can query charts without a terminal.
package chartmcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pcmnking/liangfstar/internal/calc"
	"github.com/pcmnking/liangfstar/internal/chart"
	"github.com/pcmnking/liangfstar/internal/cycle"
	"github.com/pcmnking/liangfstar/internal/engine"
	"github.com/pcmnking/liangfstar/internal/rules"
	"github.com/pcmnking/liangfstar/internal/telemetry"
	"github.com/pcmnking/liangfstar/internal/textstore"
	"github.com/pcmnking/liangfstar/internal/transform"
)

// Version is reported in the MCP implementation handshake.
const Version = "0.1.0"

// Config holds the collaborators of a Server. Only Rules is required.
type Config struct {
	Rules   *rules.Holder
	Calc    *calc.Calculator
	Texts   textstore.Store
	Emitter *telemetry.Emitter
	Logger  *slog.Logger
}

// Server is the chart MCP server.
type Server struct {
	mcp     *mcp.Server
	rules   *rules.Holder
	calc    *calc.Calculator
	engine  *engine.Engine
	texts   textstore.Store
	emitter *telemetry.Emitter
	logger  *slog.Logger
}

// NewServer creates a server with every chart tool registered.
func NewServer(cfg Config) *Server {
	s := &Server{
		mcp: mcp.NewServer(&mcp.Implementation{
			Name:    "liangfstar",
			Version: Version,
		}, nil),
		rules:   cfg.Rules,
		calc:    cfg.Calc,
		texts:   cfg.Texts,
		emitter: cfg.Emitter,
		logger:  cfg.Logger,
	}
	if s.rules == nil {
		s.rules = rules.NewHolder(rules.Default())
	}
	if s.calc == nil {
		s.calc = calc.New()
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	s.engine = engine.New(s.calc.Resolver())
	s.registerTools()
	return s
}

// Run serves over t until the client disconnects or ctx is cancelled.
func (s *Server) Run(ctx context.Context, t mcp.Transport) error {
	return s.mcp.Run(ctx, t)
}

// SSEHandler serves the tools over SSE/HTTP.
func (s *Server) SSEHandler() http.Handler {
	return mcp.NewSSEHandler(func(_ *http.Request) *mcp.Server {
		return s.mcp
	}, nil)
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "compute_chart",
		Description: "Compute a chart from stems and branches and return every sector",
	}, s.computeChart)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "evaluate_chart",
		Description: "Compute a chart and list the pattern rules it matches",
	}, s.evaluateChart)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "sector_flights",
		Description: "List the four flying transformations leaving one sector",
	}, s.sectorFlights)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_rules",
		Description: "List the loaded pattern rules",
	}, s.listRules)
}

// chartInput is the shared chart description accepted by every chart tool.
type chartInput struct {
	BirthStem string `json:"birth_stem" jsonschema:"stem of the birth year, e.g. 甲 or jia"`
	YinStem   string `json:"yin_stem" jsonschema:"stem placed on the 寅 sector"`
	Ming      string `json:"ming" jsonschema:"branch of the Ming sector"`
	Ziwei     string `json:"ziwei" jsonschema:"branch holding 紫微"`
	Wenqu     string `json:"wenqu,omitempty" jsonschema:"branch holding 文曲"`
	Wenchang  string `json:"wenchang,omitempty" jsonschema:"branch holding 文昌"`
	Zuofu     string `json:"zuofu,omitempty" jsonschema:"branch holding 左輔"`
	Youbi     string `json:"youbi,omitempty" jsonschema:"branch holding 右弼"`
	Decade    string `json:"decade,omitempty" jsonschema:"branch of the decade layer Ming"`
	Year      string `json:"year,omitempty" jsonschema:"branch of the yearly layer Ming"`
}

func (in chartInput) inputs() calc.Inputs {
	return calc.Inputs{
		BirthStem: in.BirthStem,
		YinStem:   in.YinStem,
		Ming:      in.Ming,
		Ziwei:     in.Ziwei,
		Wenqu:     in.Wenqu,
		Wenchang:  in.Wenchang,
		Zuofu:     in.Zuofu,
		Youbi:     in.Youbi,
		Decade:    in.Decade,
		Year:      in.Year,
	}
}

func (s *Server) compute(in chartInput) (*chart.Chart, error) {
	c, err := s.calc.Compute(in.inputs())
	if err != nil {
		return nil, err
	}
	s.emitter.ChartComputed("mcp", telemetry.ChartData{ //nolint:errcheck // telemetry is best-effort
		BirthStem: in.BirthStem,
		Ming:      in.Ming,
		Primary:   in.Ziwei,
	})
	return c, nil
}

type computeOutput struct {
	Chart chart.Snapshot `json:"chart"`
}

func (s *Server) computeChart(_ context.Context, _ *mcp.CallToolRequest, in chartInput) (*mcp.CallToolResult, computeOutput, error) {
	c, err := s.compute(in)
	if err != nil {
		return nil, computeOutput{}, err
	}
	return nil, computeOutput{Chart: c.Snapshot()}, nil
}

type evaluateOutput struct {
	Source  string         `json:"source"`
	Matches []engine.Match `json:"matches"`
}

func (s *Server) evaluateChart(_ context.Context, _ *mcp.CallToolRequest, in chartInput) (*mcp.CallToolResult, evaluateOutput, error) {
	c, err := s.compute(in)
	if err != nil {
		return nil, evaluateOutput{}, err
	}
	rs := s.rules.Current()
	matches := s.engine.Evaluate(c, rs)
	if matches == nil {
		matches = []engine.Match{}
	}
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.ID)
	}
	s.emitter.RulesEvaluated("mcp", rs.Source, telemetry.EvaluationData{Rules: rs.Len(), Matched: ids}) //nolint:errcheck // telemetry is best-effort
	return nil, evaluateOutput{Source: rs.Source, Matches: matches}, nil
}

type flightsInput struct {
	Chart  chartInput `json:"chart" jsonschema:"the chart to compute"`
	Sector string     `json:"sector" jsonschema:"branch (子) or role (fude, 福德) of the source sector"`
}

type flightView struct {
	Stem   string `json:"stem"`
	Star   string `json:"star"`
	Kind   string `json:"kind"`
	Target string `json:"target,omitempty"`
	Role   string `json:"role,omitempty"`
	Self   bool   `json:"self,omitempty"`
	Text   string `json:"text,omitempty"`
}

type flightsOutput struct {
	Branch  string       `json:"branch"`
	Role    string       `json:"role"`
	Flights []flightView `json:"flights"`
}

func (s *Server) sectorFlights(ctx context.Context, _ *mcp.CallToolRequest, in flightsInput) (*mcp.CallToolResult, flightsOutput, error) {
	if in.Sector == "" {
		return nil, flightsOutput{}, fmt.Errorf("sector is required")
	}
	c, err := s.compute(in.Chart)
	if err != nil {
		return nil, flightsOutput{}, err
	}
	src, err := findSector(c, in.Sector)
	if err != nil {
		return nil, flightsOutput{}, err
	}

	out := flightsOutput{
		Branch:  src.Branch().String(),
		Role:    src.Role().Title(),
		Flights: []flightView{},
	}
	for _, f := range s.calc.Resolver().Flights(c, src) {
		v := flightView{Stem: f.Stem.String(), Star: f.Star, Kind: f.Kind.String(), Self: f.Self}
		if f.Landed {
			target := c.Sector(f.Target)
			v.Target = f.Target.String()
			v.Role = target.Role().Title()
			v.Text = s.flightText(ctx, src, f, target)
		}
		out.Flights = append(out.Flights, v)
	}
	return nil, out, nil
}

// flightText looks up the interpretation for f. Missing texts are not errors.
func (s *Server) flightText(ctx context.Context, src *chart.Sector, f transform.Flight, target *chart.Sector) string {
	if s.texts == nil {
		return ""
	}
	var (
		text string
		err  error
	)
	if f.Self {
		text, err = s.texts.Self(ctx, src.Role().Title(), f.Kind.String())
	} else {
		text, err = s.texts.Flight(ctx, src.Role().Title(), f.Kind.String(), target.Role().Title())
	}
	if err != nil {
		if !errors.Is(err, textstore.ErrNotFound) {
			s.logger.Warn("text lookup failed", "source", src.Role().Title(), "kind", f.Kind.String(), "error", err)
		}
		return ""
	}
	return text
}

// findSector accepts a branch symbol first, then a role name.
func findSector(c *chart.Chart, name string) (*chart.Sector, error) {
	if b, err := cycle.ParseBranch(name); err == nil {
		return c.Sector(b), nil
	}
	r, err := chart.ParseRole(name)
	if err != nil {
		return nil, fmt.Errorf("unknown sector %q", name)
	}
	s, ok := c.SectorForRole(r)
	if !ok {
		return nil, fmt.Errorf("no sector carries role %s", r.Title())
	}
	return s, nil
}

type listRulesInput struct {
	Category string `json:"category,omitempty" jsonschema:"only list rules in this category"`
}

type ruleView struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Severity string   `json:"severity"`
	Triggers []string `json:"triggers"`
}

type listRulesOutput struct {
	Source string     `json:"source"`
	Rules  []ruleView `json:"rules"`
}

func (s *Server) listRules(_ context.Context, _ *mcp.CallToolRequest, in listRulesInput) (*mcp.CallToolResult, listRulesOutput, error) {
	rs := s.rules.Current()
	out := listRulesOutput{Source: rs.Source, Rules: []ruleView{}}
	for _, r := range rs.Rules {
		if in.Category != "" && r.Category != in.Category {
			continue
		}
		v := ruleView{ID: r.ID, Name: r.Name, Category: r.Category, Severity: r.Severity, Triggers: []string{}}
		for _, t := range r.Triggers {
			v.Triggers = append(v.Triggers, t.Describe())
		}
		out.Rules = append(out.Rules, v)
	}
	return nil, out, nil
}
