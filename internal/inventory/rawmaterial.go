package inventory

import (
	"sort"
	"time"

	"github.com/usman-global/usman-books/internal/accounting"
)

// RawMaterialPosition is the stock and weighted average cost of one grade.
type RawMaterialPosition struct {
	OriginalTypeID string  `json:"originalTypeId"`
	Name           string  `json:"name"`
	OpeningKg      float64 `json:"openingKg"`
	PurchasedKg    float64 `json:"purchasedKg"`
	IssuedKg       float64 `json:"issuedKg"`
	StockKg        float64 `json:"stockKg"`
	CostUSD        float64 `json:"costUsd"`
	AvgCostPerKg   float64 `json:"avgCostPerKg"`
	Value          float64 `json:"value"`
	Negative       bool    `json:"negative"`
}

// RawMaterialReport values raw material stock as of a day.
type RawMaterialReport struct {
	AsOf       time.Time             `json:"asOf"`
	Positions  []RawMaterialPosition `json:"positions"`
	TotalKg    float64               `json:"totalKg"`
	TotalValue float64               `json:"totalValue"`
}

// WeightedAverageCost returns Σcost/Σkg over the opening lot and every
// purchase of the grade dated on or before asOf. It is zero when no weight
// has been received.
func WeightedAverageCost(t OriginalType, purchases []RawMaterialPurchase, asOf time.Time) float64 {
	kg, cost := receivedLots(t, purchases, accounting.Day(asOf))
	if kg == 0 {
		return 0
	}
	return cost / kg
}

func receivedLots(t OriginalType, purchases []RawMaterialPurchase, asOf time.Time) (kg, cost float64) {
	kg, cost = t.OpeningKg, t.OpeningValueUSD
	for _, p := range purchases {
		if p.OriginalTypeID != t.ID || accounting.Day(p.Date).After(asOf) {
			continue
		}
		kg += p.WeightKg
		cost += p.CostUSD()
	}
	return kg, cost
}

// ValueRawMaterial computes stock kg and value per original type as of asOf.
func ValueRawMaterial(types []OriginalType, purchases []RawMaterialPurchase, issues []RawMaterialIssue, asOf time.Time) RawMaterialReport {
	asOf = accounting.Day(asOf)
	report := RawMaterialReport{AsOf: asOf, Positions: make([]RawMaterialPosition, 0, len(types))}
	for _, t := range types {
		kg, cost := receivedLots(t, purchases, asOf)
		pos := RawMaterialPosition{
			OriginalTypeID: t.ID,
			Name:           t.Name,
			OpeningKg:      t.OpeningKg,
			PurchasedKg:    kg - t.OpeningKg,
			CostUSD:        accounting.Round2(cost),
		}
		for _, is := range issues {
			if is.OriginalTypeID == t.ID && !accounting.Day(is.Date).After(asOf) {
				pos.IssuedKg += is.WeightKg
			}
		}
		if kg != 0 {
			pos.AvgCostPerKg = cost / kg
		}
		pos.StockKg = kg - pos.IssuedKg
		pos.Value = accounting.Round2(pos.StockKg * pos.AvgCostPerKg)
		pos.Negative = pos.StockKg < 0
		report.Positions = append(report.Positions, pos)
		report.TotalKg += pos.StockKg
		report.TotalValue += pos.Value
	}
	sort.SliceStable(report.Positions, func(i, j int) bool { return report.Positions[i].Name < report.Positions[j].Name })
	report.TotalValue = accounting.Round2(report.TotalValue)
	return report
}
