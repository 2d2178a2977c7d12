package model

import "time"

// Fund types as they appear in the catalog.
const (
	FundTypeDebt     = "Debt"
	FundTypeHybrid   = "Hybrid"
	FundTypeEquity   = "Equity"
	FundTypeIndexETF = "Index-ETF"
)

// Fund is one row of the fund catalog. The catalog owns it; engines only read.
type Fund struct {
	Name          string    `json:"fund_name"`
	RiskProfile   string    `json:"risk_profile"`
	Duration      string    `json:"duration"`
	Type          string    `json:"fund_type"`
	Category      string    `json:"fund_category"`
	MinInvestment float64   `json:"min_investment"`
	Return1Y      float64   `json:"return_1y"`
	Return3Y      float64   `json:"return_3y"`
	Return5Y      float64   `json:"return_5y"`
	ExpenseRatio  float64   `json:"expense_ratio"`
	AUMCrore      float64   `json:"aum_cr"`
	Rating        int       `json:"rating"`
	Remarks       string    `json:"remarks,omitempty"`
	LastUpdated   time.Time `json:"last_updated"`
}
