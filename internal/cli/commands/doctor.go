package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/graphql-go/graphql/language/parser"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/blogadmin/internal/blog"
	"github.com/leapstack-labs/blogadmin/internal/cli/config"
	"github.com/leapstack-labs/blogadmin/internal/cli/output"
	"github.com/leapstack-labs/blogadmin/internal/connector"
	"github.com/leapstack-labs/blogadmin/internal/graphql"
	"github.com/leapstack-labs/blogadmin/internal/pagination"
	"github.com/leapstack-labs/blogadmin/internal/view"
)

// Check statuses.
const (
	statusPass  = "pass"
	statusWarn  = "warn"
	statusError = "error"
)

// DoctorOptions holds options for the doctor command.
type DoctorOptions struct {
	Offline bool
}

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	opts := &DoctorOptions{}
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, connector documents and backend reachability",
		Long: `Run health checks over the admin setup:
- Configuration and credentials
- Every generated GraphQL document parses
- Every admin view points at a registered resource
- The GraphQL endpoint answers

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # Run every check
  blogadmin doctor

  # Skip the network check
  blogadmin doctor --offline --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Offline, "offline", false, "Skip the backend check")

	return cmd
}

// DoctorOutput is the JSON output for the doctor command.
type DoctorOutput struct {
	HealthChecks    []HealthCheck `json:"health_checks" yaml:"health_checks"`
	Score           int           `json:"score" yaml:"score"`
	Recommendations []string      `json:"recommendations" yaml:"recommendations"`
	IssueCount      int           `json:"issue_count" yaml:"issue_count"`
}

// HealthCheck represents a single health check result.
type HealthCheck struct {
	RuleID     string   `json:"rule_id" yaml:"rule_id"`
	Name       string   `json:"name" yaml:"name"`
	Group      string   `json:"group" yaml:"group"`
	Status     string   `json:"status" yaml:"status"` // "pass", "warn", "error"
	IssueCount int      `json:"issue_count" yaml:"issue_count"`
	Details    []string `json:"details,omitempty" yaml:"details,omitempty"`
}

func newCheck(id, name, group string, issues []string, failStatus string) HealthCheck {
	c := HealthCheck{RuleID: id, Name: name, Group: group, Status: statusPass, IssueCount: len(issues), Details: issues}
	if len(issues) > 0 {
		c.Status = failStatus
	}
	return c
}

func runDoctor(cmd *cobra.Command, opts *DoctorOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	views, err := blog.NewViewSet()
	if err != nil {
		return fmt.Errorf("failed to build views: %w", err)
	}
	reg := cmdCtx.Connector.Registry()

	checks := []HealthCheck{
		checkConfig(cmdCtx.Cfg, config.GetConfigFileUsed()),
		checkCredentials(cmdCtx.Cfg),
		checkDocuments(reg, cmdCtx.Cfg.PageSize),
		checkViews(reg, views),
	}
	if !opts.Offline {
		checks = append(checks, checkBackend(cmd.Context(), cmdCtx.Client, cmdCtx.Session))
	}

	out := buildDoctorOutput(checks)
	cmdCtx.Logger.Debug("doctor finished", "score", out.Score, "issues", out.IssueCount)

	switch r.EffectiveMode() {
	case output.ModeJSON, output.ModeYAML:
		return r.Value(out)
	case output.ModeMarkdown:
		renderDoctorMarkdown(r, out)
	default:
		renderDoctorText(r, out)
	}
	return nil
}

func buildDoctorOutput(checks []HealthCheck) *DoctorOutput {
	out := &DoctorOutput{HealthChecks: checks, Recommendations: []string{}}
	for _, c := range checks {
		out.IssueCount += c.IssueCount
	}
	out.Score = calculateHealthScore(checks)
	out.Recommendations = append(out.Recommendations, generateRecommendations(checks)...)
	return out
}

func checkConfig(cfg *config.Config, fileUsed string) HealthCheck {
	var issues []string
	if fileUsed == "" {
		issues = append(issues, "no blogadmin.yaml found, running on defaults and environment")
	}
	if cfg.Server.SessionSecret == config.DefaultSessionSecret {
		issues = append(issues, "server.session_secret is the built-in development secret")
	}
	return newCheck("CF01", "Configuration", "configuration", issues, statusWarn)
}

func checkCredentials(cfg *config.Config) HealthCheck {
	var issues []string
	if cfg.Token == "" {
		issues = append(issues, "no token configured, backend calls are anonymous")
	}
	if cfg.Token != "" && cfg.User == "" {
		issues = append(issues, "token without user, entries will be created without an owner")
	}
	return newCheck("CF02", "Credentials", "configuration", issues, statusWarn)
}

// checkDocuments builds every document the registry can send and parses it.
func checkDocuments(reg *connector.Registry, pageSize int) HealthCheck {
	ops := []connector.Operation{connector.OpList, connector.OpRead, connector.OpCreate, connector.OpUpdate, connector.OpDelete}
	var issues []string
	for _, name := range reg.Names() {
		for _, op := range ops {
			h, err := reg.Lookup(name, op)
			if err != nil {
				continue
			}
			doc, err := h.Query(connector.Request{
				Op:   op,
				ID:   "doctor",
				Page: pagination.Page{First: pageSize},
			})
			if err != nil {
				issues = append(issues, fmt.Sprintf("%s %s: %v", name, op, err))
				continue
			}
			if _, err := parser.Parse(parser.ParseParams{Source: doc}); err != nil {
				issues = append(issues, fmt.Sprintf("%s %s: %v", name, op, err))
			}
		}
	}
	return newCheck("RG01", "GraphQL documents", "registry", issues, statusError)
}

func checkViews(reg *connector.Registry, views *view.Set) HealthCheck {
	var issues []string
	for _, v := range views.All() {
		if _, ok := reg.Descriptor(v.Resource); !ok {
			issues = append(issues, fmt.Sprintf("view %s uses unknown resource %q", v.Path, v.Resource))
		}
	}
	return newCheck("RG02", "Admin views", "registry", issues, statusError)
}

func checkBackend(ctx context.Context, exec connector.Executor, s connector.Session) HealthCheck {
	var issues []string
	status := statusError
	env, err := exec.Do(ctx, graphql.Request{Query: "{__typename}"}, s.Header())
	switch {
	case err != nil:
		issues = append(issues, err.Error())
	case env.Err() != nil:
		issues = append(issues, env.Err().Error())
		status = statusWarn
	}
	return newCheck("BE01", "GraphQL endpoint", "backend", issues, status)
}

// calculateHealthScore computes a 0-100 score: warnings cost 10 points per
// issue, errors 25.
func calculateHealthScore(checks []HealthCheck) int {
	score := 100
	for _, check := range checks {
		switch check.Status {
		case statusError:
			score -= check.IssueCount * 25
		case statusWarn:
			score -= check.IssueCount * 10
		}
	}
	if score < 0 {
		score = 0
	}
	return score
}

// generateRecommendations creates actionable recommendations based on findings.
func generateRecommendations(checks []HealthCheck) []string {
	var recommendations []string
	for _, check := range checks {
		if check.IssueCount == 0 {
			continue
		}
		if rec := getRecommendation(check.RuleID); rec != "" {
			recommendations = append(recommendations, rec)
		}
	}
	return recommendations
}

func getRecommendation(ruleID string) string {
	switch ruleID {
	case "CF01":
		return "Create blogadmin.yaml and set server.session_secret (e.g. session_secret: ${BLOGADMIN_SECRET})"
	case "CF02":
		return "Run 'blogadmin login' and export BLOGADMIN_TOKEN and BLOGADMIN_USER"
	case "RG01":
		return "Fix the field lists of the failing resources in internal/blog/resources.go"
	case "RG02":
		return "Register the missing resources or correct the view's resource name"
	case "BE01":
		return "Check api_url and graphql_path, and that the backend is running"
	default:
		return ""
	}
}

func statusIcon(styles *output.Styles, status string) string {
	switch status {
	case statusError:
		return styles.Error.Render("x")
	case statusWarn:
		return styles.Warning.Render("!")
	default:
		return styles.Success.Render("ok")
	}
}

func renderDoctorText(r *output.Renderer, out *DoctorOutput) {
	styles := r.Styles()
	titleCaser := cases.Title(language.English)

	r.Println(styles.Header1.Render("blogadmin Health Report"))
	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))

	currentGroup := ""
	for _, check := range out.HealthChecks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println("")
			r.Println(styles.Bold.Render("   " + titleCaser.String(currentGroup)))
			r.Println(styles.Muted.Render("   " + strings.Repeat("-", 40)))
		}
		r.Printf("   %s %s %s\n", statusIcon(styles, check.Status), styles.Muted.Render(check.RuleID), check.Name)
		for _, detail := range check.Details {
			r.Println(styles.Muted.Render("       - " + detail))
		}
	}

	r.Println("")
	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	scoreStyle := styles.Success
	if out.Score < 80 {
		scoreStyle = styles.Warning
	}
	if out.Score < 50 {
		scoreStyle = styles.Error
	}
	r.Printf("Health Score: %s\n", scoreStyle.Render(fmt.Sprintf("%d/100", out.Score)))

	if len(out.Recommendations) > 0 {
		r.Println("")
		r.Println(styles.Header2.Render("Recommendations"))
		for i, rec := range out.Recommendations {
			r.Printf("  %d. %s\n", i+1, rec)
		}
	}
}

func renderDoctorMarkdown(r *output.Renderer, out *DoctorOutput) {
	titleCaser := cases.Title(language.English)

	r.Println(output.FormatHeader(1, "blogadmin Health Report"))
	currentGroup := ""
	for _, check := range out.HealthChecks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println("")
			r.Println(output.FormatHeader(2, titleCaser.String(currentGroup)))
		}
		r.Println(output.FormatKeyValue(check.RuleID+" "+check.Name, check.Status))
		for _, detail := range check.Details {
			r.Println("  - " + detail)
		}
	}
	r.Println("")
	r.Println(output.FormatKeyValue("Health Score", fmt.Sprintf("%d/100", out.Score)))

	if len(out.Recommendations) > 0 {
		r.Println("")
		r.Println(output.FormatHeader(2, "Recommendations"))
		for i, rec := range out.Recommendations {
			r.Printf("%d. %s\n", i+1, rec)
		}
	}
}
