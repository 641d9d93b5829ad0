// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/MKhiriev/go-mirror-keeper/models"
)

var statusHeaders = []string{"COLLECTION", "STATE", "REVISION", "PENDING", "LAST SYNC", "REASON"}

const stateColumn = 1

// RenderStatus renders the status report as a bordered table. Failed rows
// are highlighted and in-flight runs are marked.
func RenderStatus(status models.StatusResponse) string {
	rows := make([][]string, 0, len(status.Collections))
	for _, c := range status.Collections {
		rows = append(rows, statusRow(c))
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(statusHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == stateColumn && row >= 0 && row < len(status.Collections) {
				switch state := status.Collections[row].RunState; {
				case state == models.StateFailed:
					return failedStyle
				case state != models.StateIdle:
					return activeStyle
				}
			}
			return cellStyle
		})

	var b strings.Builder
	b.WriteString(titleStyle.Render("MIRROR STATUS"))
	b.WriteString("\n")
	if len(rows) == 0 {
		b.WriteString(helpStyle.Render("no collections are mirrored yet"))
	} else {
		b.WriteString(t.Render())
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(strconv.Itoa(status.Length) + " collection(s)"))

	return appStyle.Render(b.String())
}

func statusRow(c models.CollectionStatus) []string {
	return []string{
		c.ID,
		string(c.RunState),
		strconv.FormatInt(c.Revision, 10),
		strconv.Itoa(c.PendingEdits),
		timeOrNA(c.LastSyncedAt),
		valueOrNA(c.FailureReason),
	}
}

// RenderBuildInfo renders the build metadata of the binary.
func RenderBuildInfo(info models.AppBuildInfo) string {
	fields := info.Fields()
	lines := make([]string, 0, len(fields))
	for _, field := range fields {
		lines = append(lines, field.Label+": "+field.Value)
	}

	return helpStyle.Render(strings.Join(lines, "\n"))
}

func timeOrNA(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "N/A"
	}
	return t.UTC().Format(time.RFC3339)
}

func valueOrNA(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "N/A"
	}
	return v
}
