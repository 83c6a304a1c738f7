package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/vrsandeep/docscan/internal/classify"
	"github.com/vrsandeep/docscan/internal/models"
)

const datePattern = `(\d{1,2}[/.\-]\d{1,2}[/.\-]\d{2,4}|\d{1,2}[\s\-]?(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*[\s\-,]*\d{2,4})`

var (
	// Indian registration plates, e.g. MH12AB1234 or "GJ 05 X 7781".
	vehicleRe   = regexp.MustCompile(`\b([A-Z]{2}[ \-]?\d{1,2}[ \-]?[A-Z]{1,3}[ \-]?\d{3,4})\b`)
	anyDateRe   = regexp.MustCompile(`(?i)` + datePattern)
	parenRe     = regexp.MustCompile(`\(([A-Za-z][A-Za-z ]{2,})\)`)
	pinStateRe  = regexp.MustCompile(`([A-Za-z][A-Za-z ]*?)\s*[,\-]?\s*\d{6}\s*$`)
	separatorRe = regexp.MustCompile(`^[\s:\-.]+`)

	titleCaser = cases.Title(language.English)
)

// find returns the first non-empty capture group of re in text.
func find(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	for _, g := range m[min(1, len(m)):] {
		if g = strings.TrimSpace(g); g != "" {
			return g
		}
	}
	return models.NotFound
}

func findVehicle(text string) string {
	m := vehicleRe.FindStringSubmatch(text)
	if m == nil {
		return models.NotFound
	}
	return strings.NewReplacer(" ", "", "-", "").Replace(m[1])
}

func splitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

// labelIndex returns the index of the first line whose normalized form
// contains one of labels, and the label that matched.
func labelIndex(lines []string, labels ...string) (int, string) {
	for i, ln := range lines {
		norm := classify.Normalize(ln)
		for _, l := range labels {
			if strings.Contains(norm, l) {
				return i, l
			}
		}
	}
	return -1, ""
}

// labelValue reads the value printed after a label, either on the same line
// ("Material: HDPE scrap") or on the next non-empty line.
func labelValue(lines []string, labels ...string) string {
	i, label := labelIndex(lines, labels...)
	if i < 0 {
		return models.NotFound
	}
	norm := classify.Normalize(lines[i])
	if at := strings.Index(norm, label); at >= 0 {
		rest := separatorRe.ReplaceAllString(norm[at+len(label):], "")
		if rest = strings.TrimSpace(rest); rest != "" {
			return valueFromLine(lines[i], rest)
		}
	}
	if next := nextNonEmpty(lines, i+1); next >= 0 {
		return strings.TrimSpace(lines[next])
	}
	return models.NotFound
}

// valueFromLine recovers the original casing of the normalized suffix rest.
func valueFromLine(line, rest string) string {
	line = strings.TrimSpace(line)
	if len(rest) <= len(line) && strings.EqualFold(line[len(line)-len(rest):], rest) {
		return line[len(line)-len(rest):]
	}
	return rest
}

func nextNonEmpty(lines []string, from int) int {
	for j := from; j < len(lines); j++ {
		if strings.TrimSpace(lines[j]) != "" {
			return j
		}
	}
	return -1
}

// headingIndex returns the first line that is the bare heading label,
// optionally followed by a colon or dash and a value.
func headingIndex(lines []string, label string) int {
	re := regexp.MustCompile(`^` + regexp.QuoteMeta(label) + `\s*(?:[:\-].*)?$`)
	for i, ln := range lines {
		if re.MatchString(classify.Normalize(ln)) {
			return i
		}
	}
	return -1
}

func stateNear(lines []string, span int, labels ...string) string {
	i, _ := labelIndex(lines, labels...)
	return stateAfter(lines, i, span)
}

// stateAfter looks for a state within span lines from line i. States are
// read from "(Gujarat)" style annotations or from the name that precedes a
// six digit PIN code.
func stateAfter(lines []string, i, span int) string {
	if i < 0 {
		return models.NotFound
	}
	for j := i; j < len(lines) && j <= i+span; j++ {
		if m := parenRe.FindStringSubmatch(lines[j]); m != nil {
			return titleCaser.String(strings.TrimSpace(m[1]))
		}
		if m := pinStateRe.FindStringSubmatch(strings.TrimSpace(lines[j])); m != nil {
			return titleCaser.String(strings.TrimSpace(m[1]))
		}
	}
	return models.NotFound
}

func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	return v, err == nil
}

// toTons converts a weight in the given unit to tons. Bare numbers above 100
// are read as kilograms, which is how weighbridge slips print them.
func toTons(value float64, unit string) float64 {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "kg", "kgs":
		return value / 1000
	case "mt", "ton", "tons", "t":
		return value
	}
	if value > 100 {
		return value / 1000
	}
	return value
}

func formatTons(tons float64) string {
	return fmt.Sprintf("%.3f", tons)
}
