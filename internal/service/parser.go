package service

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"finflow/internal/models"

	"github.com/shopspring/decimal"
)

const (
	maxDescriptionLen = 200
	maxMerchantLen    = 100
)

var (
	statementDatePattern = regexp.MustCompile(`(\d{1,2}/\d{1,2}/\d{2,4})`)
	amountPattern        = regexp.MustCompile(`\d+\.?\d*`)
	typeIndicatorPattern = regexp.MustCompile(`(?i)\b(CR|DR|DEBIT|CREDIT)\b`)
	leadingNumberPattern = regexp.MustCompile(`^\d+\.?\d*\s*`)

	slashDatePattern = regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{2,4})`)
	isoDatePattern   = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`)
	monDatePattern   = regexp.MustCompile(`(\d{1,2})-([A-Za-z]{3})-(\d{2,4})`)

	debitHints = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bDR\b`),
		regexp.MustCompile(`(?i)\bdebit\b`),
		regexp.MustCompile(`(?i)\bwithdraw`),
		regexp.MustCompile(`(?i)\bpurchase`),
		regexp.MustCompile(`(?i)\bpayment\b`),
	}
	creditHints = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bCR\b`),
		regexp.MustCompile(`(?i)\bcredit\b`),
		regexp.MustCompile(`(?i)\bdeposit`),
		regexp.MustCompile(`(?i)\brefund`),
	}

	monthAbbrev = map[string]time.Month{
		"jan": time.January, "feb": time.February, "mar": time.March, "apr": time.April,
		"may": time.May, "jun": time.June, "jul": time.July, "aug": time.August,
		"sep": time.September, "oct": time.October, "nov": time.November, "dec": time.December,
	}

	fallbackDateLayouts = []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006/01/02",
		"Jan 2, 2006",
		"January 2, 2006",
		"2 Jan 2006",
		"2 January 2006",
		"Mon Jan 2 2006",
	}
)

type amountToken struct {
	value string
	index int
}

// ParseStatementText scans extracted statement text line by line and returns every line that
// resolves to a transaction. Lines that do not parse are dropped; the pass never fails.
func ParseStatementText(text string) []models.ParsedTransaction {
	var out []models.ParsedTransaction
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(strings.TrimSuffix(raw, "\r"))
		if line == "" {
			continue
		}
		if tx, ok := ParseLine(line); ok {
			out = append(out, tx)
		}
	}
	return out
}

// ParseLine parses one statement line. The returned transaction has no category yet.
func ParseLine(line string) (models.ParsedTransaction, bool) {
	dateLoc := statementDatePattern.FindStringIndex(line)
	if dateLoc == nil {
		return models.ParsedTransaction{}, false
	}
	dateStr := line[dateLoc[0]:dateLoc[1]]

	// only numbers after the date; the date's own digits are never amounts
	var amounts []amountToken
	for _, loc := range amountPattern.FindAllStringIndex(line[dateLoc[1]:], -1) {
		start := dateLoc[1] + loc[0]
		amounts = append(amounts, amountToken{value: line[start : dateLoc[1]+loc[1]], index: start})
	}
	if len(amounts) == 0 {
		return models.ParsedTransaction{}, false
	}

	typeLoc := typeIndicatorPattern.FindStringSubmatchIndex(line)
	typeIndicator := ""
	if typeLoc != nil {
		typeIndicator = strings.ToUpper(line[typeLoc[2]:typeLoc[3]])
	}

	txAmount := amountToken{index: -1}
	if typeLoc != nil {
		// nearest amount before the indicator
		for _, a := range amounts {
			if a.index < typeLoc[0] {
				txAmount = a
			}
		}
	}
	if txAmount.index < 0 {
		txAmount = amounts[0]
	}

	amount, err := decimal.NewFromString(strings.TrimSuffix(txAmount.value, "."))
	if err != nil || amount.IsZero() {
		return models.ParsedTransaction{}, false
	}

	direction := models.DirectionDebit
	if typeIndicator != "" {
		if typeIndicator == "CR" || typeIndicator == "CREDIT" {
			direction = models.DirectionCredit
		}
	} else if matchesAny(creditHints, line) && !matchesAny(debitHints, line) {
		direction = models.DirectionCredit
	}

	descStart := txAmount.index + len(txAmount.value)
	if typeLoc != nil && typeLoc[1] > descStart {
		descStart = typeLoc[1]
	}
	description := collapseSpaces(line[descStart:])

	if len(amounts) > 1 {
		for _, a := range amounts {
			if a.index > txAmount.index && a.value != txAmount.value {
				if strings.Contains(description, a.value) {
					description = strings.TrimSpace(strings.Replace(description, a.value, "", 1))
				}
				break
			}
		}
	}
	description = strings.TrimSpace(leadingNumberPattern.ReplaceAllString(description, ""))

	if description == "" {
		rest := strings.Replace(line, dateStr, "", 1)
		rest = strings.Replace(rest, txAmount.value, "", 1)
		if loc := typeIndicatorPattern.FindStringIndex(rest); loc != nil {
			rest = rest[:loc[0]] + rest[loc[1]:]
		}
		description = collapseSpaces(rest)
	}

	date, ok := ParseStatementDate(dateStr)
	if !ok {
		return models.ParsedTransaction{}, false
	}

	return models.ParsedTransaction{
		Date:        date,
		Description: truncateRunes(description, maxDescriptionLen),
		Amount:      amount.Abs(),
		Direction:   direction,
		RawMerchant: truncateRunes(description, maxMerchantLen),
	}, true
}

// ParseStatementDate accepts D/M/Y (either order, day-first preferred), YYYY-MM-DD and
// DD-Mon-YYYY, then a few common layouts. Results are midnight UTC.
func ParseStatementDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)

	if m := slashDatePattern.FindStringSubmatch(s); m != nil {
		first, _ := strconv.Atoi(m[1])
		second, _ := strconv.Atoi(m[2])
		year := expandYear(m[3])

		if d, ok := civilDate(year, second, first); ok {
			return d, true
		}
		if d, ok := civilDate(year, first, second); ok {
			return d, true
		}
		return time.Time{}, false
	}

	if m := isoDatePattern.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		return civilDate(year, month, day)
	}

	if m := monDatePattern.FindStringSubmatch(s); m != nil {
		if month, ok := monthAbbrev[strings.ToLower(m[2])]; ok {
			day, _ := strconv.Atoi(m[1])
			return civilDate(expandYear(m[3]), int(month), day)
		}
	}

	for _, layout := range fallbackDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

func civilDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}

func expandYear(y string) int {
	year, _ := strconv.Atoi(y)
	if len(y) == 2 {
		year += 2000
	}
	return year
}

func matchesAny(patterns []*regexp.Regexp, s string) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
