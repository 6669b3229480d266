package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/wuwenbin0122/debate-hub/internal/debate"
	"github.com/wuwenbin0122/debate-hub/internal/models"
)

var (
	boldWhite = color.New(color.FgWhite, color.Bold).SprintFunc()
	faint     = color.New(color.Faint).SprintFunc()
	proColor  = color.New(color.FgGreen, color.Bold).SprintFunc()
	conColor  = color.New(color.FgRed, color.Bold).SprintFunc()
	errColor  = color.New(color.FgRed).SprintFunc()
)

func sideLabel(side models.Side) string {
	switch side {
	case models.SidePro:
		return proColor("PRO")
	case models.SideCon:
		return conColor("CON")
	default:
		return faint("---")
	}
}

// speaker names the author of a message from the side it was placed on.
func speaker(m models.Message, conversationSide models.Side) string {
	if m.Side == debate.ComputeSide(models.RoleBot, conversationSide) {
		return "Bot"
	}
	return "You"
}

func printList(w io.Writer, conversations []models.Conversation) {
	if len(conversations) == 0 {
		fmt.Fprintln(w, faint("No conversations yet"))
		return
	}

	for _, c := range conversations {
		fmt.Fprintf(w, "%s  %s  %s\n", faint(fmt.Sprintf("#%-4s", c.ID)), sideLabel(c.Side), boldWhite(c.Topic))
		fmt.Fprintf(w, "       %d messages, last active %s\n", c.MessageCount, formatWhen(c.LastActivity))
	}
}

func printDetail(w io.Writer, conversation models.Conversation, messages []models.Message) {
	title := conversation.Topic
	if title == "" {
		title = "Conversation " + conversation.ID.String()
	}
	fmt.Fprintf(w, "%s  %s\n", sideLabel(conversation.Side), boldWhite(title))
	fmt.Fprintf(w, "%s\n\n", faint(fmt.Sprintf("%d messages • Active debate", len(messages))))

	for _, m := range messages {
		fmt.Fprintf(w, "%s %s %s\n", sideLabel(m.Side), boldWhite(speaker(m, conversation.Side)), faint(formatClock(m.Timestamp)))
		for _, line := range strings.Split(m.Content, "\n") {
			fmt.Fprintf(w, "    %s\n", line)
		}
	}
}

func formatWhen(ts models.Timestamp) string {
	if ts.IsZero() {
		return "unknown"
	}
	return ts.Local().Format("Jan 2, 03:04 PM")
}

func formatClock(ts models.Timestamp) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Local().Format("03:04 PM")
}

func errorText(err error) string {
	return errColor("error: " + err.Error())
}
