package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"hairfluencer/internal/domain"
	"hairfluencer/internal/pipeline"
	"hairfluencer/internal/present"
	"hairfluencer/internal/progress"
)

const barWidth = 20

func formatStyles(items []domain.Hairstyle) string {
	if len(items) == 0 {
		return "No hairstyles available\n"
	}
	var sb strings.Builder
	sb.WriteString(color.CyanString("Hairstyles\n"))
	sb.WriteString(strings.Repeat("─", 60) + "\n")
	for _, h := range items {
		fmt.Fprintf(&sb, "%s  %-14s %s\n", color.HiBlackString("%2s", h.ID), h.Name, h.Description)
	}
	return sb.String()
}

func headerLine(h domain.Hairstyle) string {
	return color.CyanString("Trying on %s", h.Name)
}

func checkpointLine(cp progress.Checkpoint) string {
	filled := cp.Percent * barWidth / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	return fmt.Sprintf("%s %3d%% %s", color.GreenString(bar), cp.Percent, cp.Status)
}

func failureLine(f *pipeline.Failure) string {
	return color.RedString("✗ %s: %s", f.Title, f.Message)
}

func noticeLine(n *pipeline.Notice) string {
	return color.YellowString("! %s: %s", n.Title, n.Message)
}

func viewLine(v present.View) string {
	if v.Empty {
		return v.Message
	}
	return color.GreenString("✓ %s", v.Title) + " " + v.Subtitle
}

func savedLine(location string) string {
	return fmt.Sprintf("%s %s", color.GreenString("saved"), location)
}

func errorLine(err error) string {
	return color.RedString("error: %v", err)
}
