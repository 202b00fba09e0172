package inventory

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusOutOfStock Status = "OutOfStock"
	StatusLowStock   Status = "LowStock"
	StatusAvailable  Status = "Available"
)

// AllStatuses lists every projection label, worst first.
var AllStatuses = []Status{StatusOutOfStock, StatusLowStock, StatusAvailable}

// statusRules are checked in order, first match wins, Available otherwise.
// Both the Go predicate and the SQL condition live on the same rule so the
// in-process and pushed-down projections agree on every boundary.
var statusRules = []struct {
	status Status
	match  func(total, minimum int) bool
	sql    string // %[1]s total column, %[2]s minimum column
}{
	{StatusOutOfStock, func(total, _ int) bool { return total <= 0 }, "%[1]s <= 0"},
	{StatusLowStock, func(total, minimum int) bool { return total <= minimum }, "%[1]s <= %[2]s"},
}

// StatusOf projects an item's totals onto a status label.
// availableStock does not influence the label: items that are fully on loan
// are still owned and therefore not out of stock.
func StatusOf(totalStock, availableStock, minimum int) Status {
	for _, r := range statusRules {
		if r.match(totalStock, minimum) {
			return r.status
		}
	}
	return StatusAvailable
}

// StatusCaseSQL renders the projection as a SQL CASE expression over the given columns.
func StatusCaseSQL(totalColumn, minimumColumn string) string {
	var b strings.Builder
	b.WriteString("CASE")
	for _, r := range statusRules {
		fmt.Fprintf(&b, " WHEN "+r.sql+" THEN '%[3]s'", totalColumn, minimumColumn, r.status)
	}
	fmt.Fprintf(&b, " ELSE '%s' END", StatusAvailable)
	return b.String()
}

// ParseStatus accepts the labels case-insensitively.
func ParseStatus(s string) (Status, bool) {
	for _, st := range AllStatuses {
		if strings.EqualFold(string(st), s) {
			return st, true
		}
	}
	return "", false
}
