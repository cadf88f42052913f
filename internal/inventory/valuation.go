package inventory

import (
	"sort"
	"time"

	"github.com/usman-global/usman-books/internal/accounting"
)

// KgFactor converts one native unit of the item into kilograms.
func KgFactor(item Item) float64 {
	if item.PackingType == PackingKg || item.PackingType == "" {
		return 1
	}
	return item.BaleSize
}

// OpeningStock returns the quantity on hand at the start of asOf.
func OpeningStock(item Item, productions []Production, sales []SalesInvoice, asOf time.Time) float64 {
	asOf = accounting.Day(asOf)
	qty := item.OpeningStock
	for _, p := range productions {
		if p.ItemID == item.ID && accounting.Day(p.Date).Before(asOf) {
			qty += p.Quantity
		}
	}
	for _, inv := range sales {
		if !inv.Counts() || !accounting.Day(inv.Date).Before(asOf) {
			continue
		}
		qty -= soldQuantity(inv, item.ID)
	}
	return qty
}

// StockMovement is the position of one item over a period.
type StockMovement struct {
	ItemID    string      `json:"itemId"`
	Name      string      `json:"name"`
	Packing   PackingType `json:"packingType"`
	Opening   float64     `json:"opening"`
	Produced  float64     `json:"produced"`
	Sold      float64     `json:"sold"`
	Closing   float64     `json:"closing"`
	ClosingKg float64     `json:"closingKg"`
	AvgPrice  float64     `json:"avgProductionPrice"`
	Worth     float64     `json:"worth"`
	Negative  bool        `json:"negative"`
}

// ClosingStock returns the movement of item between start and end inclusive.
// Negative positions are reported as-is and flagged.
func ClosingStock(item Item, productions []Production, sales []SalesInvoice, start, end time.Time) StockMovement {
	start, end = accounting.Day(start), accounting.Day(end)
	m := StockMovement{
		ItemID:   item.ID,
		Name:     item.Name,
		Packing:  item.PackingType,
		Opening:  OpeningStock(item, productions, sales, start),
		AvgPrice: item.AvgProductionPrice,
	}
	for _, p := range productions {
		if p.ItemID == item.ID && inRange(p.Date, start, end) {
			m.Produced += p.Quantity
		}
	}
	for _, inv := range sales {
		if inv.Counts() && inRange(inv.Date, start, end) {
			m.Sold += soldQuantity(inv, item.ID)
		}
	}
	m.Closing = m.Opening + m.Produced - m.Sold
	m.ClosingKg = m.Closing * KgFactor(item)
	m.Worth = accounting.Round2(m.ClosingKg * item.AvgProductionPrice)
	m.Negative = m.Closing < 0
	return m
}

// StockReport values every catalog item for a period.
type StockReport struct {
	From       time.Time       `json:"from"`
	To         time.Time       `json:"to"`
	Items      []StockMovement `json:"items"`
	TotalWorth float64         `json:"totalWorth"`
	Negatives  int             `json:"negatives"`
}

// ValueFinishedGoods values every item's closing stock.
func ValueFinishedGoods(items []Item, productions []Production, sales []SalesInvoice, start, end time.Time) StockReport {
	report := StockReport{From: accounting.Day(start), To: accounting.Day(end), Items: make([]StockMovement, 0, len(items))}
	for _, item := range items {
		m := ClosingStock(item, productions, sales, start, end)
		report.Items = append(report.Items, m)
		report.TotalWorth += m.Worth
		if m.Negative {
			report.Negatives++
		}
	}
	sort.SliceStable(report.Items, func(i, j int) bool { return report.Items[i].Name < report.Items[j].Name })
	report.TotalWorth = accounting.Round2(report.TotalWorth)
	return report
}

// ProductionRow summarises production against sales for one item.
type ProductionRow struct {
	ItemID     string  `json:"itemId"`
	Name       string  `json:"name"`
	Produced   float64 `json:"produced"`
	ProducedKg float64 `json:"producedKg"`
	Sold       float64 `json:"sold"`
	SoldKg     float64 `json:"soldKg"`
	SalesValue float64 `json:"salesValue"`
}

// ProductionAnalysis reports produced and sold quantities per item in range.
// Items with no activity are omitted.
func ProductionAnalysis(items []Item, productions []Production, sales []SalesInvoice, start, end time.Time) []ProductionRow {
	start, end = accounting.Day(start), accounting.Day(end)
	rows := make([]ProductionRow, 0, len(items))
	for _, item := range items {
		row := ProductionRow{ItemID: item.ID, Name: item.Name}
		for _, p := range productions {
			if p.ItemID == item.ID && inRange(p.Date, start, end) {
				row.Produced += p.Quantity
			}
		}
		for _, inv := range sales {
			if !inv.Counts() || !inRange(inv.Date, start, end) {
				continue
			}
			for _, l := range inv.Lines {
				if l.ItemID == item.ID {
					row.Sold += l.Quantity
					row.SalesValue += l.Amount()
				}
			}
		}
		if row.Produced == 0 && row.Sold == 0 {
			continue
		}
		factor := KgFactor(item)
		row.ProducedKg = row.Produced * factor
		row.SoldKg = row.Sold * factor
		row.SalesValue = accounting.Round2(row.SalesValue)
		rows = append(rows, row)
	}
	return rows
}

func soldQuantity(inv SalesInvoice, itemID string) float64 {
	var qty float64
	for _, l := range inv.Lines {
		if l.ItemID == itemID {
			qty += l.Quantity
		}
	}
	return qty
}

func inRange(t, start, end time.Time) bool {
	d := accounting.Day(t)
	return !d.Before(start) && !d.After(end)
}
