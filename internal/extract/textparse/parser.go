// Package textparse is the terminal extraction tier: a pure regex parser
// over OCR text. It is deterministic, makes no network calls, and never
// fails; malformed input just yields absent fields.
package textparse

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode"

	"github.com/medbillguard/medbillguard/constants"
	"github.com/medbillguard/medbillguard/internal/extract"
)

// Parser adapts Parse to the TextBackend contract.
type Parser struct {
	logger *slog.Logger
}

func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

func (p *Parser) ExtractText(_ context.Context, ocrText string) (extract.Extraction, error) {
	res := Parse(ocrText)
	p.logger.Debug("textparse.done", "items", len(res.Items), "hospital", res.Header.HospitalName)
	return res, nil
}

// Parse extracts header fields, totals and candidate line items from raw
// multi-line OCR text.
func Parse(text string) extract.Extraction {
	var out extract.Extraction

	lines := splitLines(text)
	out.Header = parseHeader(text, lines)
	out.Totals = parseTotals(text)
	out.Items = parseItems(lines)

	if len(out.Items) > 0 {
		out.Confidence = 0.6
	} else {
		out.Confidence = 0.2
	}
	return out
}

func splitLines(text string) []string {
	raw := strings.Split(text, "\n")
	out := make([]string, 0, len(raw))
	for _, ln := range raw {
		ln = strings.TrimSpace(ln)
		if ln != "" {
			out = append(out, ln)
		}
	}
	return out
}

func parseHeader(text string, lines []string) extract.BillHeader {
	var h extract.BillHeader

	// hospital name: first fully-uppercase line among the first five that
	// is not itself a date
	limit := len(lines)
	if limit > 5 {
		limit = 5
	}
	for _, ln := range lines[:limit] {
		if ln != strings.ToUpper(ln) {
			continue
		}
		if letterCount(ln) < 3 || reDateToken.MatchString(ln) {
			continue
		}
		h.HospitalName = ln
		break
	}

	h.GSTIN = reGSTIN.FindString(text)
	if m := reBillNumber.FindStringSubmatch(text); len(m) > 1 {
		h.BillNumber = m[1]
	}

	// collect every date token; the last occurrence is taken as the bill
	// date (later matches are more likely the transactional date than an
	// admission date appearing earlier)
	dates := reDateToken.FindAllStringSubmatch(text, -1)
	if len(dates) > 0 {
		h.BillDate = normalizeDate(dates[len(dates)-1])
	}
	return h
}

func normalizeDate(m []string) string {
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if year < 100 {
		year += 2000
	}
	if month > 12 && day <= 12 {
		day, month = month, day
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

func parseTotals(text string) extract.Totals {
	var t extract.Totals
	for _, tp := range totalsPatterns {
		m := tp.re.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		v, err := parseAmount(m[1])
		if err != nil {
			continue
		}
		switch tp.field {
		case "subtotal":
			t.Subtotal = &v
		case "grand":
			t.GrandTotal = &v
		case "discount":
			t.Discount = &v
		case "cgst":
			t.CGST = &v
		case "sgst":
			t.SGST = &v
		}
	}
	return t
}

func parseItems(lines []string) []extract.ExtractedItem {
	var items []extract.ExtractedItem

	// single mutable cursor, scoped to this parse call: section headers
	// switch it and subsequent item lines inherit it
	current := constants.Other

lineLoop:
	for _, ln := range lines {
		for _, sh := range sectionHeaders {
			if sh.re.MatchString(ln) {
				current = sh.cat
				continue lineLoop
			}
		}
		for _, sp := range skipPatterns {
			if sp.MatchString(ln) {
				continue lineLoop
			}
		}

		// tokenize with the leading ordinal stripped so "1." does not
		// masquerade as a quantity or price
		body := reLeadingOrdinal.ReplaceAllString(ln, "")
		nums := numericTokens(body)
		if !hasPlausibleAmount(nums) {
			continue
		}

		qty := detectQuantity(body)
		unitPrice, total, quantity := disambiguate(nums, qty)

		name := cleanItemName(ln)
		if name == "" {
			continue
		}

		cat := current
		if cat == constants.Other {
			cat = constants.ClassifyItemName(name)
		}

		items = append(items, extract.ExtractedItem{
			RawText:     ln,
			ItemName:    name,
			Category:    cat,
			Quantity:    quantity,
			UnitPrice:   unitPrice,
			TotalBilled: total,
		})
	}
	return items
}

type numToken struct {
	value   float64
	decimal bool
}

// numericTokens collects the numbers on a line in order, skipping dosage
// figures ("500mg", "5ml") and percentages, which are not money.
func numericTokens(ln string) []numToken {
	var out []numToken
	for _, loc := range reAmount.FindAllStringIndex(ln, -1) {
		tok := ln[loc[0]:loc[1]]
		rest := ln[loc[1]:]
		if isDosageOrPercent(rest) {
			continue
		}
		v, err := parseAmount(tok)
		if err != nil {
			continue
		}
		out = append(out, numToken{value: v, decimal: strings.Contains(tok, ".")})
	}
	return out
}

func isDosageOrPercent(rest string) bool {
	r := strings.ToLower(strings.TrimLeft(rest, " "))
	for _, suffix := range []string{"mg", "ml", "mcg", "gm", "%", "iu"} {
		if strings.HasPrefix(r, suffix) {
			return true
		}
	}
	return false
}

// hasPlausibleAmount reports whether any token looks like money: it has
// decimals, or it is a bare integer large enough not to be a quantity.
func hasPlausibleAmount(nums []numToken) bool {
	for _, n := range nums {
		if n.decimal || n.value >= 10 {
			return true
		}
	}
	return false
}

// detectQuantity looks for an explicitly labeled quantity on the line.
func detectQuantity(ln string) int {
	if m := reQtyLabel.FindStringSubmatch(ln); len(m) > 1 {
		if q, err := strconv.Atoi(m[1]); err == nil && q > 0 {
			return q
		}
	}
	if m := reQtyTimes.FindStringSubmatch(ln); len(m) > 1 {
		if q, err := strconv.Atoi(m[1]); err == nil && q > 0 {
			return q
		}
	}
	return 0
}

// disambiguate resolves which numeric tokens are the quantity, unit price
// and line total.
func disambiguate(nums []numToken, detectedQty int) (unitPrice, total float64, quantity int) {
	quantity = detectedQty
	if quantity <= 0 {
		quantity = 1
	}

	switch {
	case len(nums) >= 3 && detectedQty > 0 && int(nums[0].value) == detectedQty && !nums[0].decimal:
		// (quantity, unit price, ..., total)
		unitPrice = nums[1].value
		total = nums[len(nums)-1].value
	case len(nums) == 2 && nums[1].value >= nums[0].value:
		unitPrice = nums[0].value
		total = nums[1].value
	default:
		total = nums[len(nums)-1].value
		unitPrice = total / float64(quantity)
	}
	return unitPrice, total, quantity
}

// cleanItemName isolates the descriptive name from a raw item line.
func cleanItemName(ln string) string {
	name := reLeadingOrdinal.ReplaceAllString(ln, "")
	name = reNameQty.ReplaceAllString(name, " ")
	name = reNameMRP.ReplaceAllString(name, " ")
	name = reNameTotal.ReplaceAllString(name, " ")
	name = reNameAmount.ReplaceAllString(name, " ")
	name = strings.Join(strings.Fields(name), " ")
	name = strings.Trim(name, " -:;,.|")

	if name == "" || !mostlyAlphanumeric(name) {
		return ""
	}
	return name
}

// mostlyAlphanumeric guards against leftover punctuation or OCR noise
// becoming the "name": at least half the characters must be alphanumeric.
func mostlyAlphanumeric(s string) bool {
	total, alnum := 0, 0
	for _, r := range s {
		total++
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			alnum++
		}
	}
	return total > 0 && alnum*2 >= total
}

func letterCount(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}

func parseAmount(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	return strconv.ParseFloat(s, 64)
}
