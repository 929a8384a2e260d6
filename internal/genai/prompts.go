// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package genai

import (
	"fmt"
	"strings"

	"occasio/internal/model"
)

// System instructions for the two generation calls. Both calls share the same
// event-context prompt; only the instruction differs.
const (
	PlannerInstruction = "You are an expert event planner. Produce a clear, " +
		"step-by-step plan for the event described by the user, formatted in " +
		"markdown with numbered steps grouped under short headers."

	GiftAdvisorInstruction = "You are an expert gift advisor. Suggest exactly " +
		"five gift ideas for the recipient described by the user, formatted as " +
		"a markdown list with a one-sentence reason for each."
)

// eventDateLayout is the human-readable date format used in prompts.
const eventDateLayout = "Monday, January 2, 2006 at 3:04 PM"

// BuildEventPrompt formats the shared prompt content from an event's fields.
func BuildEventPrompt(ev model.Event) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Event: %s\n", ev.Name))
	sb.WriteString(fmt.Sprintf("Type: %s\n", ev.Type))
	sb.WriteString(fmt.Sprintf("Date: %s\n", ev.StartsAt.Format(eventDateLayout)))
	sb.WriteString(fmt.Sprintf("About the recipient: %s\n", ev.Recipient))
	return sb.String()
}
