package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Text renders the report as aligned tables. Rates are formatted with
// the separators of the given locale.
func (r *Report) Text(tag language.Tag) string {
	p := message.NewPrinter(tag)
	var b strings.Builder

	if r.Name != "" {
		fmt.Fprintln(&b, r.Name)
	}
	summary := make([]string, 0, 3)
	if r.Database != "" {
		summary = append(summary, "database "+r.Database)
	}
	summary = append(summary,
		countNoun(p, r.Groups, "group"),
		countNoun(p, r.Buildings, "building"))
	fmt.Fprintln(&b, strings.Join(summary, ", "))

	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "Power (MW)")
	fmt.Fprintf(&b, "  %-8s %12s\n", "produced", p.Sprintf("%.2f", r.Power.Produced))
	fmt.Fprintf(&b, "  %-8s %12s\n", "consumed", p.Sprintf("%.2f", r.Power.Consumed))
	fmt.Fprintf(&b, "  %-8s %12s\n", "net", signed(p, r.Power.Net))

	if len(r.Items) > 0 {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "Items (per minute)")
		fmt.Fprintf(&b, "  %-28s %12s %12s %12s\n", "Item", "Produced", "Consumed", "Net")
		for _, item := range r.Items {
			fmt.Fprintf(&b, "  %-28s %12s %12s %12s\n", item.Name,
				p.Sprintf("%.2f", item.Produced),
				p.Sprintf("%.2f", item.Consumed),
				signed(p, item.Net))
		}
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, countNoun(p, len(r.Warnings), "warning"))
		for _, warning := range r.Warnings {
			fmt.Fprintf(&b, "  %s: %s\n", warning.Path, warning.Message)
		}
	}
	return b.String()
}

// JSON renders the report as indented JSON.
func (r *Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// signed formats a rate with an explicit plus sign on gains.
func signed(p *message.Printer, v float64) string {
	if v > 0 {
		return "+" + p.Sprintf("%.2f", v)
	}
	return p.Sprintf("%.2f", v)
}

func countNoun(p *message.Printer, n int, noun string) string {
	if n == 1 {
		return p.Sprintf("%d %s", n, noun)
	}
	return p.Sprintf("%d %ss", n, noun)
}
