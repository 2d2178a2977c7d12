package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"RoboAdvisor/internal/model"
)

// Catalog CSV column headers.
const (
	colName          = "Fund Name"
	colCategory      = "Category"
	colType          = "Type"
	colRisk          = "Risk Profile"
	colDuration      = "Duration"
	colMinInvestment = "Min Investment"
	colRating        = "Rating"
	colReturn1Y      = "1Y Return %"
	colReturn3Y      = "3Y Return %"
	colReturn5Y      = "5Y Return %"
	colExpenseRatio  = "Expense Ratio"
	colAUM           = "AUM (Cr)"
	colRemarks       = "Remarks"
	colLastUpdated   = "Last Updated"
)

var requiredColumns = []string{colName, colCategory, colType, colRisk, colDuration, colMinInvestment}

// fund type spellings seen in refreshed catalogs
var typeAliases = map[string]string{
	"Index/ETF": model.FundTypeIndexETF,
	"Index ETF": model.FundTypeIndexETF,
	"ETF":       model.FundTypeIndexETF,
	"Index":     model.FundTypeIndexETF,
}

// ParseCSV reads a fund catalog, trimming strings and coercing numbers.
// Numeric cells may carry currency symbols, grouping commas or a trailing %.
// An unparsable minimum investment becomes 0; rows without a name are skipped.
func ParseCSV(r io.Reader) ([]model.Fund, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("catalog is empty")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("catalog missing column %q", c)
		}
	}

	var funds []model.Fund
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		get := func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		name := get(colName)
		if name == "" {
			continue
		}
		f := model.Fund{
			Name:          name,
			RiskProfile:   get(colRisk),
			Duration:      get(colDuration),
			Type:          normalizeType(get(colType)),
			Category:      get(colCategory),
			MinInvestment: number(get(colMinInvestment)),
			Return1Y:      number(get(colReturn1Y)),
			Return3Y:      number(get(colReturn3Y)),
			Return5Y:      number(get(colReturn5Y)),
			ExpenseRatio:  number(get(colExpenseRatio)),
			AUMCrore:      number(get(colAUM)),
			Rating:        int(number(get(colRating))),
			Remarks:       get(colRemarks),
		}
		if s := get(colLastUpdated); s != "" {
			if t, err := time.Parse("2006-01-02", s); err == nil {
				f.LastUpdated = t
			} else {
				log.Printf("[WARN] line %d: bad last updated date %q", line, s)
			}
		}
		funds = append(funds, f)
	}
	return funds, nil
}

func normalizeType(s string) string {
	if t, ok := typeAliases[s]; ok {
		return t
	}
	return s
}

// number parses a loosely formatted numeric cell; anything unparsable is 0.
func number(s string) float64 {
	s = strings.NewReplacer("₹", "", "Rs.", "", "Rs", "", ",", "", "%", "", " ", "").Replace(s)
	if s == "" || s == "-" {
		return 0
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	return d.InexactFloat64()
}
