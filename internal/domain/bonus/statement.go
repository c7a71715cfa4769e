package bonus

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"scorecard/internal/domain/auth"
	"scorecard/internal/domain/core"
)

// Statement renders the stored bonus of one employee as a PDF.
func (s *Service) Statement(ctx context.Context, actor auth.Actor, employeeID string, year int) ([]byte, error) {
	r, err := s.GetResult(ctx, actor, employeeID, year)
	if err != nil {
		return nil, err
	}
	emp, err := s.employees.GetEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return RenderStatement(*emp, *r)
}

func RenderStatement(emp core.Employee, r Result) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Bonus statement %d", r.Year), false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Bonus statement")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	line := func(format string, args ...any) {
		pdf.Cell(0, 8, fmt.Sprintf(format, args...))
		pdf.Ln(7)
	}
	line("Employee: %s", emp.Name)
	if emp.Email != "" {
		line("Email: %s", emp.Email)
	}
	line("Fiscal year: %d (September %d to August %d)", r.Year, r.Year, r.Year+1)
	pdf.Ln(3)
	line("Global score: %.1f", r.Score)
	line("Scale: %s%s", describeScale(r.Terms.Scale), sourceSuffix(string(r.Terms.ScaleSource)))
	line("Target multiple: %g%s", r.Terms.TargetMultiple, sourceSuffix(string(r.Terms.TargetSource)))
	line("Payout fraction: %.4f", r.Fraction)
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 12)
	line("Bonus amount: %s %s", r.Amount.StringFixed(2), r.Currency)
	pdf.SetFont("Helvetica", "", 9)
	line("Computed at %s", r.ComputedAt.Format("2006-01-02 15:04 MST"))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func describeScale(s Scale) string {
	if s.Kind == ScaleTiered {
		parts := make([]string, len(s.Tiers))
		for i, t := range sortedTiers(s.Tiers) {
			parts[i] = fmt.Sprintf("%g+ pays %g", t.MinScore, t.Fraction)
		}
		return "tiered (" + strings.Join(parts, ", ") + ")"
	}
	return fmt.Sprintf("linear from %g (%g) to 100 (%g), floor %g", s.Threshold, s.MinFraction, s.MaxFraction, s.Floor)
}

func sourceSuffix(level string) string {
	if level == "" {
		return ""
	}
	return " [" + strings.ReplaceAll(level, "_", " ") + " override]"
}
