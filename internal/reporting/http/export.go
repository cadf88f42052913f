package reportinghttp

import (
	"github.com/usman-global/usman-books/internal/accounting/reports"
	"github.com/usman-global/usman-books/internal/export"
	"github.com/usman-global/usman-books/internal/inventory"
)

var (
	ledgerColumns = []export.Column{
		{Label: "Date", Key: "date"},
		{Label: "Voucher", Key: "voucher"},
		{Label: "Type", Key: "type"},
		{Label: "Description", Key: "description"},
		{Label: "Debit", Key: "debit"},
		{Label: "Credit", Key: "credit"},
		{Label: "Balance", Key: "balance"},
		{Label: "Side", Key: "side"},
		{Label: "FCY Debit", Key: "fcyDebit"},
		{Label: "FCY Credit", Key: "fcyCredit"},
		{Label: "FCY Balance", Key: "fcyBalance"},
	}
	summaryColumns = []export.Column{
		{Label: "ID", Key: "id"},
		{Label: "Name", Key: "name"},
		{Label: "Opening", Key: "opening"},
		{Label: "Debit", Key: "debit"},
		{Label: "Credit", Key: "credit"},
		{Label: "Closing", Key: "closing"},
	}
	trialBalanceColumns = []export.Column{
		{Label: "Group", Key: "group"},
		{Label: "Code", Key: "code"},
		{Label: "Name", Key: "name"},
		{Label: "Opening", Key: "opening"},
		{Label: "Debit", Key: "debit"},
		{Label: "Credit", Key: "credit"},
		{Label: "Closing", Key: "closing"},
	}
	statementColumns = []export.Column{
		{Label: "Section", Key: "section"},
		{Label: "Code", Key: "code"},
		{Label: "Name", Key: "name"},
		{Label: "Amount", Key: "amount"},
	}
	stockColumns = []export.Column{
		{Label: "Item", Key: "item"},
		{Label: "Name", Key: "name"},
		{Label: "Packing", Key: "packing"},
		{Label: "Opening", Key: "opening"},
		{Label: "Produced", Key: "produced"},
		{Label: "Sold", Key: "sold"},
		{Label: "Closing", Key: "closing"},
		{Label: "Closing Kg", Key: "closingKg"},
		{Label: "Avg Price", Key: "avgPrice"},
		{Label: "Worth", Key: "worth"},
	}
	rawMaterialColumns = []export.Column{
		{Label: "Grade", Key: "grade"},
		{Label: "Name", Key: "name"},
		{Label: "Opening Kg", Key: "openingKg"},
		{Label: "Purchased Kg", Key: "purchasedKg"},
		{Label: "Issued Kg", Key: "issuedKg"},
		{Label: "Stock Kg", Key: "stockKg"},
		{Label: "Avg Cost/Kg", Key: "avgCost"},
		{Label: "Value", Key: "value"},
	}
	packingColumns = []export.Column{
		{Label: "Item", Key: "item"},
		{Label: "Name", Key: "name"},
		{Label: "Unit", Key: "unit"},
		{Label: "Opening", Key: "opening"},
		{Label: "Purchased", Key: "purchased"},
		{Label: "In Hand", Key: "inHand"},
		{Label: "Cost", Key: "cost"},
	}
	productionColumns = []export.Column{
		{Label: "Item", Key: "item"},
		{Label: "Name", Key: "name"},
		{Label: "Produced", Key: "produced"},
		{Label: "Produced Kg", Key: "producedKg"},
		{Label: "Sold", Key: "sold"},
		{Label: "Sold Kg", Key: "soldKg"},
		{Label: "Sales Value", Key: "salesValue"},
	}
)

func ledgerRows(l reports.Ledger) []export.Row {
	rows := make([]export.Row, 0, len(l.Rows)+1)
	rows = append(rows, export.Row{"description": "Opening balance", "balance": l.Opening, "side": reports.Side(l.Opening)})
	for _, r := range l.Rows {
		row := export.Row{
			"date":        r.Date,
			"voucher":     r.VoucherID,
			"type":        string(r.EntryType),
			"description": r.Description,
			"debit":       r.Debit,
			"credit":      r.Credit,
			"balance":     r.Balance,
			"side":        r.Side,
		}
		if r.FCY != nil {
			row["fcyDebit"] = r.FCY.Debit
			row["fcyCredit"] = r.FCY.Credit
			row["fcyBalance"] = r.FCY.Balance
		}
		rows = append(rows, row)
	}
	return rows
}

func summaryRows(in []reports.SummaryRow) []export.Row {
	rows := make([]export.Row, 0, len(in))
	for _, r := range in {
		rows = append(rows, export.Row{
			"id": r.ID, "name": r.Name, "opening": r.Opening,
			"debit": r.Debit, "credit": r.Credit, "closing": r.Closing,
		})
	}
	return rows
}

func trialBalanceRows(tb reports.TrialBalance) []export.Row {
	var rows []export.Row
	for _, g := range tb.Groups {
		for _, a := range g.Accounts {
			rows = append(rows, export.Row{
				"group": string(g.Key), "code": a.Code, "name": a.Name,
				"opening": a.Opening, "debit": a.Debit, "credit": a.Credit, "closing": a.Closing,
			})
		}
	}
	rows = append(rows, export.Row{
		"group": "Total", "opening": tb.TotalOpening,
		"debit": tb.TotalDebit, "credit": tb.TotalCredit, "closing": tb.TotalClosing,
	})
	return rows
}

func profitAndLossRows(pl reports.ProfitAndLoss) []export.Row {
	var rows []export.Row
	for _, section := range []reports.ProfitAndLossSection{pl.Revenue, pl.Expense} {
		for _, a := range section.Accounts {
			rows = append(rows, export.Row{"section": section.Label, "code": a.Code, "name": a.Name, "amount": a.Amount})
		}
		rows = append(rows, export.Row{"section": section.Label, "name": "Total", "amount": section.Total})
	}
	rows = append(rows, export.Row{"section": "Net income", "amount": pl.NetIncome})
	return rows
}

func balanceSheetRows(bs reports.BalanceSheet) []export.Row {
	var rows []export.Row
	for _, section := range []reports.BalanceSheetSection{bs.Assets, bs.Liabilities, bs.Equity} {
		for _, a := range section.Accounts {
			rows = append(rows, export.Row{"section": section.Label, "code": a.Code, "name": a.Name, "amount": a.Balance})
		}
		rows = append(rows, export.Row{"section": section.Label, "name": "Total", "amount": section.Total})
	}
	rows = append(rows,
		export.Row{"section": "Liabilities and equity", "name": "Total", "amount": bs.TotalLiabilitiesAndEquity},
		export.Row{"section": "Check", "name": "Difference", "amount": bs.Difference},
	)
	return rows
}

func stockRows(report inventory.StockReport) []export.Row {
	rows := make([]export.Row, 0, len(report.Items)+1)
	for _, m := range report.Items {
		rows = append(rows, export.Row{
			"item": m.ItemID, "name": m.Name, "packing": string(m.Packing),
			"opening": m.Opening, "produced": m.Produced, "sold": m.Sold,
			"closing": m.Closing, "closingKg": m.ClosingKg, "avgPrice": m.AvgPrice, "worth": m.Worth,
		})
	}
	rows = append(rows, export.Row{"name": "Total", "worth": report.TotalWorth})
	return rows
}

func rawMaterialRows(report inventory.RawMaterialReport) []export.Row {
	rows := make([]export.Row, 0, len(report.Positions)+1)
	for _, p := range report.Positions {
		rows = append(rows, export.Row{
			"grade": p.OriginalTypeID, "name": p.Name, "openingKg": p.OpeningKg,
			"purchasedKg": p.PurchasedKg, "issuedKg": p.IssuedKg, "stockKg": p.StockKg,
			"avgCost": p.AvgCostPerKg, "value": p.Value,
		})
	}
	rows = append(rows, export.Row{"name": "Total", "stockKg": report.TotalKg, "value": report.TotalValue})
	return rows
}

func packingRows(in []inventory.PackingPosition) []export.Row {
	rows := make([]export.Row, 0, len(in))
	for _, p := range in {
		rows = append(rows, export.Row{
			"item": p.ItemID, "name": p.Name, "unit": p.Unit, "opening": p.Opening,
			"purchased": p.Purchased, "inHand": p.InHand, "cost": p.Cost,
		})
	}
	return rows
}

func productionRows(in []inventory.ProductionRow) []export.Row {
	rows := make([]export.Row, 0, len(in))
	for _, p := range in {
		rows = append(rows, export.Row{
			"item": p.ItemID, "name": p.Name, "produced": p.Produced, "producedKg": p.ProducedKg,
			"sold": p.Sold, "soldKg": p.SoldKg, "salesValue": p.SalesValue,
		})
	}
	return rows
}
