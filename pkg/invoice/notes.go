// Package invoice turns the free-text notes typed at the cashier terminal
// into invoice line items.
package invoice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

type Item struct {
	Amount int    `json:"amount"`
	Name   string `json:"name"`
}

// Not anchored: "Menu 2x Burger" yields 2 x "Burger".
var linePattern = regexp.MustCompile(`(?i)(\d+)x?\s*(.+)`)

// ParseNotes splits notes on commas and newlines. A piece starting with a
// count ("2x Burger", "3 cola") keeps that count; anything else counts once.
func ParseNotes(notes string) []Item {
	items := []Item{}
	if notes == "" {
		return items
	}
	for _, piece := range strings.FieldsFunc(notes, func(r rune) bool { return r == ',' || r == '\n' }) {
		if m := linePattern.FindStringSubmatch(piece); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				items = append(items, Item{Amount: n, Name: strings.TrimSpace(m[2])})
				continue
			}
		}
		if name := strings.TrimSpace(piece); name != "" {
			items = append(items, Item{Amount: 1, Name: name})
		}
	}
	return items
}

func Summary(items []Item) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = fmt.Sprintf("%dx %s", it.Amount, it.Name)
	}
	return strings.Join(parts, ", ")
}
