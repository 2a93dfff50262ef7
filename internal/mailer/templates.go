package mailer

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"math"
	"strconv"
	"strings"
	texttemplate "text/template"

	"finara/internal/models"
	"finara/internal/services"
)

const noInsights = "No insights available"

var funcs = map[string]any{
	"inr":     FormatINR,
	"percent": func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) + "%" },
}

var textTemplate = texttemplate.Must(texttemplate.New("report.txt").Funcs(funcs).Parse(
	`Your {{.Frequency}} Financial Report ({{.Period}})

Income: {{inr .Summary.TotalIncome}}
Expenses: {{inr .Summary.TotalExpenses}}
Balance: {{inr .Summary.AvailableBalance}}
Savings Rate: {{percent .Summary.SavingsPercent}}

{{range .Insights}}{{.}}
{{else}}` + noInsights + `
{{end}}`))

var htmlTemplate = htmltemplate.Must(htmltemplate.New("report.html").Funcs(funcs).Parse(`<!DOCTYPE html>
<html>
<body style="font-family:Arial,sans-serif;background:#f7f7f7;padding:24px">
  <table width="100%" style="max-width:600px;margin:0 auto;background:#ffffff;border-radius:8px;padding:24px">
    <tr><td>
      <h2 style="margin:0 0 4px">{{.Frequency}} Financial Report</h2>
      <p style="color:#666;margin:0 0 16px">{{.Period}}</p>
      <p>Hi {{.Name}}, here is your summary.</p>
      <table width="100%" style="border-collapse:collapse">
        <tr><td>Income</td><td align="right">{{inr .Summary.TotalIncome}}</td></tr>
        <tr><td>Expenses</td><td align="right">{{inr .Summary.TotalExpenses}}</td></tr>
        <tr><td>Balance</td><td align="right">{{inr .Summary.AvailableBalance}}</td></tr>
        <tr><td>Savings Rate</td><td align="right">{{percent .Summary.SavingsPercent}}</td></tr>
      </table>
      {{if .TopCategories}}
      <h3>Top Spending Categories</h3>
      <ul>
        {{range .TopCategories}}<li>{{.Category}}: {{inr .Amount}} ({{percent .Percent}})</li>{{end}}
      </ul>
      {{end}}
      <h3>Insights</h3>
      <ul>
        {{range .Insights}}<li>{{.}}</li>{{else}}<li>` + noInsights + `</li>{{end}}
      </ul>
    </td></tr>
  </table>
</body>
</html>
`))

type reportView struct {
	Frequency     string
	Period        string
	Name          string
	Summary       services.Summary
	TopCategories []services.CategoryTotal
	Insights      []string
}

// RenderReport builds the subject, text and HTML bodies for report.
func RenderReport(report *services.ReportSummary, frequency models.ReportFrequency) (Message, error) {
	view := reportView{
		Frequency:     capitalize(string(frequency)),
		Period:        report.PeriodLabel(),
		Name:          report.UserName,
		Summary:       report.Summary,
		TopCategories: report.TopCategories,
		Insights:      report.Insights,
	}
	if view.Name == "" {
		view.Name = "there"
	}

	var text, html bytes.Buffer
	if err := textTemplate.Execute(&text, view); err != nil {
		return Message{}, fmt.Errorf("render text report: %w", err)
	}
	if err := htmlTemplate.Execute(&html, view); err != nil {
		return Message{}, fmt.Errorf("render html report: %w", err)
	}

	return Message{
		To:      []string{report.UserEmail},
		Subject: fmt.Sprintf("%s Financial Report - %s", view.Frequency, view.Period),
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}

// FormatINR formats amount as whole rupees with Indian digit grouping,
// e.g. 1234567 -> "₹12,34,567".
func FormatINR(amount float64) string {
	n := int64(math.Round(math.Abs(amount)))
	digits := strconv.FormatInt(n, 10)

	var grouped string
	if len(digits) <= 3 {
		grouped = digits
	} else {
		head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
		var parts []string
		for len(head) > 2 {
			parts = append([]string{head[len(head)-2:]}, parts...)
			head = head[:len(head)-2]
		}
		parts = append([]string{head}, parts...)
		grouped = strings.Join(parts, ",") + "," + tail
	}

	if amount < 0 && n != 0 {
		return "-₹" + grouped
	}
	return "₹" + grouped
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
