package preflight

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"pdf-analyzer/config"
	"pdf-analyzer/llm/vector"

	"github.com/charmbracelet/lipgloss"
)

// Result is the outcome of one named check. Notes are printed under it.
type Result struct {
	Name   string
	Passed bool
	Notes  []string
}

func (r *Result) pass(format string, args ...any) {
	r.Notes = append(r.Notes, "o "+fmt.Sprintf(format, args...))
}

func (r *Result) fail(format string, args ...any) {
	r.Passed = false
	r.Notes = append(r.Notes, "X "+fmt.Sprintf(format, args...))
}

func (r *Result) warn(format string, args ...any) {
	r.Notes = append(r.Notes, "Warning: "+fmt.Sprintf(format, args...))
}

// Folders checks that the input and output folders exist
func Folders(cfg *config.Config) Result {
	r := Result{Name: "Folder Structure Test", Passed: true}
	for _, dir := range []string{cfg.InputDir, cfg.OutputDir} {
		info, err := os.Stat(dir)
		switch {
		case err != nil:
			r.fail("%s folder missing", dir)
		case !info.IsDir():
			r.fail("%s is not a folder", dir)
		default:
			r.pass("%s folder exists", dir)
		}
	}
	return r
}

// Credential checks that the model API key is set and plausibly formatted
func Credential(cfg *config.Config) Result {
	r := Result{Name: "API Key Test", Passed: true}
	env := cfg.LLM.APIKeyEnv

	if cfg.LLM.APIKey == "" {
		r.Passed = false
		r.warn("%s environment variable not set", env)
		r.Notes = append(r.Notes,
			fmt.Sprintf("  Set it with: export %s='your-api-key-here'", env),
			"  Or create a .env file with your API key",
		)
		return r
	}

	r.pass("%s environment variable is set", env)
	if cfg.LLM.Provider == "openai" && cfg.LLM.BaseURL == "" {
		if strings.HasPrefix(cfg.LLM.APIKey, "sk-") {
			r.pass("API key format looks correct")
		} else {
			r.warn("API key format may be incorrect (should start with 'sk-')")
		}
	}
	return r
}

// Index checks that the configured index backend is reachable
func Index(ctx context.Context, cfg *config.Config) Result {
	r := Result{Name: "Vector Index Test", Passed: true}
	if cfg.Index.Backend != config.BackendRedis {
		r.pass("%s index needs no server", cfg.Index.Backend)
		return r
	}

	idx, err := vector.NewRedisIndex(ctx, vector.RedisConfig{
		Addr:        cfg.Index.Redis.Addr,
		Password:    cfg.Index.Redis.Password,
		DB:          cfg.Index.Redis.DB,
		PoolSize:    1,
		IndexPrefix: cfg.Index.Redis.IndexPrefix,
	})
	if err != nil {
		r.fail("redis at %s is unreachable: %v", cfg.Index.Redis.Addr, err)
		return r
	}
	_ = idx.Close()
	r.pass("redis at %s is reachable", cfg.Index.Redis.Addr)
	return r
}

// Run performs every check, prints the report to w and reports whether all
// of them passed
func Run(ctx context.Context, cfg *config.Config, w io.Writer) bool {
	pass := lipgloss.NewStyle().Foreground(lipgloss.Color("#9ece6a")).Bold(true)
	fail := lipgloss.NewStyle().Foreground(lipgloss.Color("#f7768e")).Bold(true)
	rule := strings.Repeat("=", 30)

	fmt.Fprintln(w, "PDF Analyzer Setup Test")
	fmt.Fprintln(w, rule)

	results := []Result{
		Folders(cfg),
		Credential(cfg),
		Index(ctx, cfg),
	}

	allPassed := true
	for _, r := range results {
		fmt.Fprintf(w, "\n%s\n", r.Name)
		for _, note := range r.Notes {
			fmt.Fprintln(w, note)
		}
		allPassed = allPassed && r.Passed
	}

	fmt.Fprintf(w, "\n%s\nTest Results Summary:\n%s\n", rule, rule)
	for _, r := range results {
		status := pass.Render("PASS")
		if !r.Passed {
			status = fail.Render("FAIL")
		}
		fmt.Fprintf(w, "%s: %s\n", r.Name, status)
	}

	fmt.Fprintln(w, "\n"+rule)
	if allPassed {
		fmt.Fprintln(w, "All tests passed!")
		fmt.Fprintf(w, "\nNext steps:\n1. Add files to the '%s' folder\n2. Run: pdf-analyzer\n", cfg.InputDir)
	} else {
		fmt.Fprintln(w, "Some tests failed.")
		fmt.Fprintf(w, "\nCommon fixes:\n1. Run pdf-analyzer once to create the folders\n2. Set the API key: export %s='your-key'\n", cfg.LLM.APIKeyEnv)
	}
	return allPassed
}
