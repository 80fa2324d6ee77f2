package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/lzjever/mbos-wsdesk/internal/core"
	"github.com/lzjever/mbos-wsdesk/internal/session"
	"github.com/lzjever/mbos-wsdesk/internal/view"
)

var (
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10b981"))
	stoppedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ca3af"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#f59e0b"))
)

func printResult(v interface{}) {
	if output == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(v)
		return
	}
	printTable(v)
}

func printTable(v interface{}) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	switch data := v.(type) {
	case []view.Card:
		if len(data) == 0 {
			fmt.Println(view.EmptyWorkspacesText)
			return
		}
		fmt.Fprintln(w, "NAME\tSERVICE\tSTATUS\tPORT\tCREATED\tLAST ACCESSED\tACTION")
		for _, c := range data {
			action := c.Action()
			if c.Connectable {
				action = c.ConnectURL
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				c.Name, c.Service, string(c.Status), portText(c.WebPort),
				dateText(c.Created), dateText(c.LastAccessed), action)
		}
	case []view.ServiceCard:
		if len(data) == 0 {
			fmt.Println("No services available.")
			return
		}
		fmt.Fprintln(w, "ICON\tNAME\tIMAGE\tDESCRIPTION")
		for _, s := range data {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.Icon, s.Name, s.Image, truncate(s.Description, 40))
		}
	case core.Workspace:
		fmt.Fprintf(w, "Workspace Name:\t%s\n", data.Name)
		fmt.Fprintf(w, "Service:\t%s\n", data.Service)
		fmt.Fprintf(w, "Status:\t%s\n", statusText(data.CurrentStatus))
		fmt.Fprintf(w, "Created:\t%s\n", timeText(data.Created.Time))
		fmt.Fprintf(w, "Last Accessed:\t%s\n", timeText(data.LastAccessed.Time))
		if data.WebPort != nil {
			fmt.Fprintf(w, "Web Interface Port:\t%d\n", *data.WebPort)
		}
		if data.WebURL != "" {
			fmt.Fprintf(w, "Access URL:\t%s\n", data.WebURL)
		}
	default:
		json.NewEncoder(os.Stdout).Encode(v)
	}
	w.Flush()
}

func statusText(s core.WorkspaceStatus) string {
	if s == core.WorkspaceRunning {
		return runningStyle.Render(string(s))
	}
	return stoppedStyle.Render(string(s))
}

func indicatorText(ind session.Indicator) string {
	if !ind.Visible {
		return runningStyle.Render("Connected")
	}
	return warnStyle.Render(ind.Text)
}

func portText(port int) string {
	if port == 0 {
		return "-"
	}
	return fmt.Sprint(port)
}

func dateText(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02")
}

func timeText(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
