package app

import (
	"bytes"
	"fmt"
	"strings"
	"text/tabwriter"

	"coinwatch/internal/market"
	"coinwatch/internal/settings"
)

const helpText = `commands:
  add <pair>            watch a pair, e.g. "ETH/USDT:futures"
  remove <pair>         stop watching a pair
  mode <simple|professional>
  top <on|off>          always on top
  min                   toggle minimized
  search [query] [market]
  view                  show prices`

// Exec runs one console command and returns its output.
func (w *Widget) Exec(line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "help", "?":
		return helpText, nil
	case "add":
		if len(args) != 1 {
			return "", fmt.Errorf("usage: add <pair>")
		}
		return "", w.AddPair(args[0])
	case "remove", "rm":
		if len(args) != 1 {
			return "", fmt.Errorf("usage: remove <pair>")
		}
		return "", w.RemovePair(args[0])
	case "mode":
		if len(args) != 1 {
			return "", fmt.Errorf("usage: mode <simple|professional>")
		}
		return "", w.SetMode(settings.Mode(strings.ToLower(args[0])))
	case "top":
		if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
			return "", fmt.Errorf("usage: top <on|off>")
		}
		w.SetAlwaysOnTop(args[0] == "on")
		return "", nil
	case "min":
		if w.ToggleMinimized() {
			return "minimized", nil
		}
		return "restored", nil
	case "search":
		return w.execSearch(args)
	case "view", "ls":
		return FormatView(w.View()), nil
	default:
		return "", fmt.Errorf("unknown command %q, try help", cmd)
	}
}

func (w *Widget) execSearch(args []string) (string, error) {
	var query string
	var filter market.MarketType
	for _, a := range args {
		if m, err := market.ParseMarketType(a); err == nil {
			filter = m
			continue
		}
		query = a
	}

	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	for _, p := range w.Search(query, filter) {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Key().ID(), p.Name, p.Market)
	}
	_ = tw.Flush()
	return strings.TrimRight(buf.String(), "\n"), nil
}

// FormatView renders v as a plain text table.
func FormatView(v View) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "mode=%s alwaysOnTop=%t minimized=%t\n", v.Mode, v.AlwaysOnTop, v.Minimized)

	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	for _, p := range v.Pairs {
		if p.Loading() {
			fmt.Fprintf(tw, "%s\t%s\tloading\t\t\t%s\n", p.ID, p.Name, p.Status)
			continue
		}
		s := p.Price.Sample
		fmt.Fprintf(tw, "%s\t%s\t%g\t%s%%\t%s\t%s", p.ID, p.Name, s.Price, s.ChangeText(), s.Trend, p.Status)
		if p.ChartStatus != "" {
			fmt.Fprintf(tw, "\tbars=%d", len(p.Chart))
		}
		fmt.Fprintln(tw)
	}
	_ = tw.Flush()
	return strings.TrimRight(buf.String(), "\n")
}
