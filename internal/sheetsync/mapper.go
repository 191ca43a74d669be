// Package sheetsync keeps the spreadsheet ledger converged with the
// registration store. The master tab mirrors every registration; each event
// gets its own tab named after the sanitized event title. Serial numbers are
// display-only and local to a tab.
package sheetsync

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cybrella/cybrella-api/internal/models"
)

// MasterTab mirrors all registrations regardless of event.
const MasterTab = "MASTER_LOG"

// headerRow is the fixed 18-column header written to row 1 of every tab.
// Column order is a wire contract: downstream sheet consumers key off it.
var headerRow = []string{
	"SERIAL NO",
	"ID",
	"NAME",
	"EMAIL",
	"PHONE",
	"EVENT",
	"UPI_REF",
	"STATUS",
	"ADDRESS",
	"STATE",
	"TIMESTAMP",
	"EVIDENCE_LINK",
	"AGE",
	"GRADE",
	"INSTITUTION",
	"CLASS_SEM",
	"COURSE",
	"ID_CARD_LINK",
}

// Header returns a copy of the canonical header row.
func Header() []string {
	header := make([]string, len(headerRow))
	copy(header, headerRow)
	return header
}

var tabNameSanitizer = regexp.MustCompile(`[^a-zA-Z0-9]`)

// TabName derives the ledger tab name for an event title: uppercase, every
// character outside [A-Za-z0-9] replaced with an underscore. This is the join
// key between registrations and historical tabs; changing it orphans them.
func TabName(eventTitle string) string {
	return strings.ToUpper(tabNameSanitizer.ReplaceAllString(eventTitle, "_"))
}

// istZone renders timestamps the way the registration desk reads them.
var istZone = func() *time.Location {
	if loc, err := time.LoadLocation("Asia/Kolkata"); err == nil {
		return loc
	}
	return time.FixedZone("IST", 5*3600+30*60)
}()

// MapRow renders one registration into the fixed 18-cell ledger row. Pure
// and total: every missing input is defaulted, nothing errors.
func MapRow(reg models.Registration, serialNumber int) []string {
	return []string{
		strconv.Itoa(serialNumber),
		reg.ID,
		reg.Name,
		reg.Email,
		formatPhone(reg.Phone),
		reg.EventTitle,
		reg.UpiRef,
		string(reg.Status),
		orNA(reg.Address),
		orNA(reg.State),
		formatTimestamp(reg.EnlistedAt),
		hyperlink(reg.PaymentScreenshot, "VIEW_ATTACHMENT"),
		orNA(reg.Age),
		orNA(reg.Grade),
		firstNonEmpty(reg.SchoolName, reg.CollegeName),
		firstNonEmpty(reg.ClassName, reg.Semester),
		firstNonEmpty(reg.Course, reg.PastCourse),
		hyperlink(reg.IDCardURL, "VIEW_ID"),
	}
}

// formatTimestamp renders DD/MM/YYYY, HH:MM:SS in 24-hour IST. The three
// accepted input shapes (ISO string, native timestamp, epoch pair) are
// normalised upstream by models.FlexTime.
func formatTimestamp(ts models.FlexTime) string {
	if ts.IsZero() {
		return "N/A"
	}
	t, ok := ts.Time()
	if !ok {
		return "INVALID_DATE"
	}
	return t.In(istZone).Format("02/01/2006, 15:04:05")
}

var indianMobile = regexp.MustCompile(`^(\+91)(\d{5})(\d{5})$`)

// formatPhone renders "+911234567890" as "'+91 12345 67890". The leading
// apostrophe forces the spreadsheet to keep the cell textual, preserving the
// plus sign. Anything that does not match the +91 pattern falls back to the
// apostrophe-prefixed cleaned digits.
func formatPhone(phone string) string {
	if phone == "" {
		return "N/A"
	}

	var clean strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			clean.WriteRune(r)
		} else if r == '+' && clean.Len() == 0 {
			clean.WriteRune(r)
		}
	}

	if m := indianMobile.FindStringSubmatch(clean.String()); m != nil {
		return fmt.Sprintf("'%s %s %s", m[1], m[2], m[3])
	}
	return "'" + clean.String()
}

func hyperlink(url, label string) string {
	if url == "" {
		return "NO_ASSET"
	}
	return fmt.Sprintf("=HYPERLINK(%q, %q)", url, label)
}

func orNA(value string) string {
	if value == "" {
		return "N/A"
	}
	return value
}

func firstNonEmpty(primary, secondary string) string {
	if primary != "" {
		return primary
	}
	if secondary != "" {
		return secondary
	}
	return "N/A"
}
