package reports

import (
	"sort"
	"time"

	"github.com/usman-global/usman-books/internal/accounting"
)

// Fixed line codes added by the composer.
const (
	LineRawMaterialStock   = "STOCK-RM"
	LineFinishedGoodsStock = "STOCK-FG"
	LineNetIncome          = "NET-INCOME"
	LineInventoryAdjust    = "INV-ADJ"
)

// InventoryValues carries the valued closing stock used by the balance sheet.
type InventoryValues struct {
	RawMaterial   float64 `json:"rawMaterial"`
	FinishedGoods float64 `json:"finishedGoods"`
}

// BalanceSheetAccount summarises an account for assets, liabilities, or equity.
type BalanceSheetAccount struct {
	Code     string              `json:"code"`
	Name     string              `json:"name"`
	Category accounting.Category `json:"category,omitempty"`
	Balance  float64             `json:"balance"`
}

// BalanceSheetSection contains the accounts and totals for a classification.
type BalanceSheetSection struct {
	Label    string                `json:"label"`
	Accounts []BalanceSheetAccount `json:"accounts"`
	Total    float64               `json:"total"`
}

func (s *BalanceSheetSection) add(row BalanceSheetAccount) {
	row.Balance = accounting.Round2(row.Balance)
	s.Accounts = append(s.Accounts, row)
	s.Total += row.Balance
}

// BalanceSheet is the structured response for the balance sheet report.
type BalanceSheet struct {
	AsOf                      time.Time           `json:"asOf"`
	Assets                    BalanceSheetSection `json:"assets"`
	Liabilities               BalanceSheetSection `json:"liabilities"`
	Equity                    BalanceSheetSection `json:"equity"`
	NetIncome                 float64             `json:"netIncome"`
	InventoryAdjustment       float64             `json:"inventoryAdjustment"`
	TotalLiabilitiesAndEquity float64             `json:"totalLiabilitiesAndEquity"`
	Difference                float64             `json:"difference"`
	Balanced                  bool                `json:"balanced"`
}

// BuildBalanceSheet composes the statement as of the given day.
//
// Inventory-category accounts are replaced by the valued raw material and
// finished goods stock; the gap between that valuation and the book balance
// is carried into equity as the inventory adjustment so that assets always
// equal liabilities plus equity.
func BuildBalanceSheet(entries []accounting.JournalEntry, accounts []accounting.Account, asOf time.Time, stock InventoryValues) BalanceSheet {
	asOf = accounting.Day(asOf)
	raw, known := closingBalances(entries, accounts, asOf)

	assets := BalanceSheetSection{Label: "Assets", Accounts: []BalanceSheetAccount{}}
	liabilities := BalanceSheetSection{Label: "Liabilities", Accounts: []BalanceSheetAccount{}}
	equity := BalanceSheetSection{Label: "Equity", Accounts: []BalanceSheetAccount{}}

	var bookInventory, netIncome float64
	codes := make([]string, 0, len(raw))
	for code := range raw {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		balance := raw[code]
		acc := known[code]
		row := BalanceSheetAccount{Code: code, Name: acc.Name, Category: acc.Category}
		switch acc.Category {
		case accounting.CategoryInventory:
			bookInventory += balance
		case accounting.CategoryRevenue, accounting.CategoryExpense:
			netIncome -= balance
		case accounting.CategoryPayable, accounting.CategoryLoan:
			row.Balance = -balance
			liabilities.add(row)
		case accounting.CategoryCapital, accounting.CategoryOpeningEquity:
			row.Balance = -balance
			equity.add(row)
		case accounting.CategoryCash, accounting.CategoryBank, accounting.CategoryReceivable,
			accounting.CategoryPackingMaterial, accounting.CategoryInvestment,
			accounting.CategoryFixedAsset, accounting.CategoryAccumulatedDepreciation:
			row.Balance = balance
			assets.add(row)
		default:
			if row.Name == "" {
				row.Name = code
			}
			row.Category = accounting.CategoryUnclassified
			row.Balance = balance
			assets.add(row)
		}
	}

	assets.add(BalanceSheetAccount{Code: LineRawMaterialStock, Name: "Raw Material Stock", Category: accounting.CategoryInventory, Balance: stock.RawMaterial})
	assets.add(BalanceSheetAccount{Code: LineFinishedGoodsStock, Name: "Finished Goods Stock", Category: accounting.CategoryInventory, Balance: stock.FinishedGoods})

	adjustment := accounting.Round2(stock.RawMaterial + stock.FinishedGoods - bookInventory)
	netIncome = accounting.Round2(netIncome)
	equity.add(BalanceSheetAccount{Code: LineNetIncome, Name: "Net Income", Balance: netIncome})
	equity.add(BalanceSheetAccount{Code: LineInventoryAdjust, Name: "Inventory Adjustment", Balance: adjustment})

	assets.Total = accounting.Round2(assets.Total)
	liabilities.Total = accounting.Round2(liabilities.Total)
	equity.Total = accounting.Round2(equity.Total)
	total := accounting.Round2(liabilities.Total + equity.Total)

	return BalanceSheet{
		AsOf:                      asOf,
		Assets:                    assets,
		Liabilities:               liabilities,
		Equity:                    equity,
		NetIncome:                 netIncome,
		InventoryAdjustment:       adjustment,
		TotalLiabilitiesAndEquity: total,
		Difference:                accounting.Round2(assets.Total - total),
		Balanced:                  accounting.NearlyEqual(assets.Total, total),
	}
}

// closingBalances returns the raw debit-minus-credit balance of every account
// touched on or before asOf, plus the chart lookup.
func closingBalances(entries []accounting.JournalEntry, accounts []accounting.Account, asOf time.Time) (map[string]float64, map[string]accounting.Account) {
	known := make(map[string]accounting.Account, len(accounts))
	for _, acc := range accounts {
		known[acc.ID] = acc
	}
	raw := make(map[string]float64)
	for _, e := range entries {
		if accounting.Day(e.Date).After(asOf) {
			continue
		}
		raw[e.Account] += e.Net()
	}
	return raw, known
}
