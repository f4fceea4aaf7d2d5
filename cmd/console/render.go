package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/story-crafter/pkg/plot"
)

var errThemeCount = fmt.Errorf("themes must list all %d axes", plot.AxisCount)

func cloneStory(s *plot.Story) (*plot.Story, error) {
	if s == nil {
		return nil, errors.New("no story yet")
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var out plot.Story
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// renderOutline writes the story as plain text, wrapped to width. It is
// what /copy puts on the clipboard.
func renderOutline(s *plot.Story, width int) string {
	if width < 20 {
		width = 20
	}
	var b strings.Builder

	title := s.Title
	if title == "" {
		title = "Untitled story"
	}
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")

	themes := make([]string, len(s.Themes))
	for i, a := range s.Themes {
		themes[i] = fmt.Sprintf("%d. %s", i+1, a)
	}
	b.WriteString("Themes: " + strings.Join(themes, ", ") + "\n\n")

	for _, tp := range s.TurningPoints {
		fmt.Fprintf(&b, "Turning point %d (%s, %s)", tp.Index+1, tp.PlotLine, tp.Type)
		if tp.Concluded {
			b.WriteString(" - concluded")
		}
		b.WriteString("\n")
		for i, d := range tp.Details {
			b.WriteString(wordwrap.String(fmt.Sprintf("  %d. %s", i+1, describeDetail(s, d)), width) + "\n")
			if d.Notes != "" {
				b.WriteString(wordwrap.String("     "+d.Notes, width) + "\n")
			}
		}
		b.WriteString("\n")
	}

	if s.Pending != nil {
		fmt.Fprintf(&b, "Waiting: %s needs %d more character(s)\n\n",
			s.Pending.Detail.Name, s.Pending.Remaining)
	}

	if len(s.Characters) > 0 {
		b.WriteString("Characters\n")
		for _, c := range s.Characters {
			b.WriteString(wordwrap.String(fmt.Sprintf("  %s: %s", c.Key, c.Name), width) + "\n")
		}
	}
	return b.String()
}

func describeDetail(s *plot.Story, d plot.PlotDetail) string {
	text := fmt.Sprintf("[%s] %s", d.Axis, d.Name)
	if d.Meta != nil {
		text += " > " + d.Meta.Name
	}
	if len(d.Characters) > 0 {
		names := make([]string, len(d.Characters))
		for i, key := range d.Characters {
			names[i] = key
			if c := s.Character(key); c != nil {
				names[i] = c.Name
			}
		}
		text += " (" + strings.Join(names, ", ") + ")"
	}
	return text
}

// command is one parsed line of console input.
type command struct {
	name string
	args []string
}

func parseCommand(input string) (command, bool) {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return command{}, false
	}
	fields := strings.Fields(input[1:])
	if len(fields) == 0 {
		return command{}, false
	}
	return command{name: strings.ToLower(fields[0]), args: fields[1:]}, true
}
