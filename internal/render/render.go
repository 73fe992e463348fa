// Package render prints results, catalogs and history listings to a
// terminal.
package render

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"

	calcmv "github.com/njchilds90/gocalcmv"
	sym "github.com/njchilds90/gocalcmv/symbolic"
)

// Options controls the output format.
type Options struct {
	Precision int32
	Color     bool
}

// Renderer writes human-readable output.
type Renderer struct {
	out  io.Writer
	opts Options

	ok, bad, warn *color.Color
	heading       lipgloss.Style
	box           lipgloss.Style
}

func New(out io.Writer, opts Options) *Renderer {
	r := &Renderer{
		out:     out,
		opts:    opts,
		ok:      color.New(color.FgGreen, color.Bold),
		bad:     color.New(color.FgRed, color.Bold),
		warn:    color.New(color.FgYellow),
		heading: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1),
	}
	for _, c := range []*color.Color{r.ok, r.bad, r.warn} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

// Number formats a numeric outcome with the configured precision.
func (r *Renderer) Number(n sym.NumericValue) string {
	if !n.Evaluable {
		return "not evaluable (" + n.Reason + ")"
	}
	if math.IsInf(n.Value, 0) || math.IsNaN(n.Value) {
		return fmt.Sprint(n.Value)
	}
	return decimal.NewFromFloat(n.Value).StringFixed(r.opts.Precision)
}

// Result prints the statement, the step trace, a summary table, the verdict
// and the interpretation notes.
func (r *Renderer) Result(res *calcmv.Result) {
	r.printf("%s\n", r.heading.Render(res.Title()))
	if len(res.Statement) > 0 {
		r.printf("%s\n", r.box.Render(strings.Join(res.Statement, "\n")))
	}
	r.printf("\n")
	for _, line := range res.Steps {
		r.printf("  %s\n", line)
	}
	r.printf("\n%s", r.Summary(res))
	r.printf("%s\n", r.Verdict(res))
	if len(res.Notes) > 0 {
		r.printf("\n%s\n", r.heading.Render("Interpretation"))
		for _, n := range res.Notes {
			r.printf("  • %s\n", n)
		}
	}
}

// Summary renders the key quantities of res as a table.
func (r *Renderer) Summary(res *calcmv.Result) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Quantity", "Value"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT})

	domain, boundary := "Domain integral", "Boundary integral"
	switch res.Kind {
	case calcmv.KindTriple:
		table.Append([]string{"Integrand", str(res.Scalar)})
		domain = "Integral"
	case calcmv.KindGreen:
		table.Append([]string{"curl F", str(res.Scalar)})
	case calcmv.KindDivergence:
		table.Append([]string{"div F", str(res.Scalar)})
		domain, boundary = "Volume integral", "Flux integral"
	case calcmv.KindStokes:
		parts := make([]string, len(res.Vector))
		for i, c := range res.Vector {
			parts[i] = str(c)
		}
		table.Append([]string{"curl F", "(" + strings.Join(parts, ", ") + ")"})
		domain = "Surface integral"
	}
	if res.Path != "" && res.Kind != calcmv.KindTriple {
		table.Append([]string{"Path", string(res.Path)})
	}
	table.Append([]string{domain, str(res.Domain)})
	if res.Kind != calcmv.KindTriple {
		b := str(res.Boundary)
		if !res.BoundaryComputed {
			b += " (not computed)"
		}
		table.Append([]string{boundary, b})
	}
	table.Append([]string{"Numeric", r.Number(res.Numeric)})
	table.Render()
	return buf.String()
}

// Verdict is the coloured one-line outcome of res.
func (r *Renderer) Verdict(res *calcmv.Result) string {
	var lines []string
	switch {
	case res.Verification.Verified:
		lines = append(lines, r.ok.Sprint("✔ verified: both sides agree"))
	case res.Verification.Checked:
		lines = append(lines, r.bad.Sprintf("✘ mismatch: residual %s", str(res.Verification.Residual)))
	case res.Kind != calcmv.KindTriple:
		lines = append(lines, r.warn.Sprint("• boundary side not computed, nothing to compare"))
	}
	if res.Approximate {
		lines = append(lines, r.warn.Sprint("• approximate value"))
	}
	if !res.Numeric.Evaluable && res.Domain != nil {
		lines = append(lines, r.warn.Sprintf("• numeric evaluation skipped: %s", res.Numeric.Reason))
	}
	return strings.Join(lines, "\n")
}

// Catalog prints the supported shapes.
func (r *Renderer) Catalog(shapes []calcmv.ShapeInfo) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Theorem", "Shape", "Parameters", "Boundary"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	for _, s := range shapes {
		params := make([]string, len(s.Params))
		for i, p := range s.Params {
			params[i] = p.Name + "=" + p.Default
		}
		boundary := "no"
		if s.Boundary {
			boundary = "yes"
		}
		table.Append([]string{string(s.Kind), s.Tag, strings.Join(params, " "), boundary})
	}
	table.Render()
	r.printf("%s", buf.String())
}

// Error prints err in the failure colour.
func (r *Renderer) Error(err error) {
	r.printf("%s\n", r.bad.Sprintf("error: %v", err))
}

// Table prints rows under header.
func (r *Renderer) Table(header []string, rows [][]string) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()
	r.printf("%s", buf.String())
}

func (r *Renderer) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}

func str(e sym.Expr) string {
	if e == nil {
		return "—"
	}
	return e.String()
}
