package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/usman-global/usman-books/internal/accounting"
	"github.com/usman-global/usman-books/internal/shared"
)

// TxRepository exposes the inventory records available inside a store
// transaction, alongside the ledger so vouchers post atomically with them.
type TxRepository interface {
	accounting.TxRepository
	Item(id string) (Item, bool)
	OriginalType(id string) (OriginalType, bool)
	PackingItem(id string) (PackingMaterialItem, bool)
	SalesInvoice(id string) (SalesInvoice, bool)
	AppendProduction(p Production) (Production, error)
	SaveSalesInvoice(inv SalesInvoice) (SalesInvoice, error)
	AppendRawPurchase(p RawMaterialPurchase) (RawMaterialPurchase, error)
	AppendRawIssue(is RawMaterialIssue) (RawMaterialIssue, error)
	SavePackingItem(item PackingMaterialItem) (PackingMaterialItem, error)
	AppendPackingPurchase(p PackingMaterialPurchase) (PackingMaterialPurchase, error)
}

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates inventory operations.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
	now   func() time.Time
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// ProductionInput records finished goods output.
type ProductionInput struct {
	ItemID   string
	Date     time.Time
	Quantity float64
	ActorID  string
}

// RecordProduction appends a production record.
func (s *Service) RecordProduction(ctx context.Context, in ProductionInput) (Production, error) {
	if in.Quantity <= 0 {
		return Production{}, ErrInvalidQuantity
	}
	if in.Date.IsZero() {
		return Production{}, accounting.ErrDateRequired
	}
	var out Production
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, ok := tx.Item(in.ItemID); !ok {
			return fmt.Errorf("%w: %s", ErrItemNotFound, in.ItemID)
		}
		p, err := tx.AppendProduction(Production{ItemID: in.ItemID, Date: accounting.Day(in.Date), Quantity: in.Quantity})
		if err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return Production{}, err
	}
	s.record(ctx, in.ActorID, "inventory.production", "production", out.ID, map[string]any{"item_id": out.ItemID, "qty": out.Quantity})
	return out, nil
}

// SalesInput describes a new sales invoice.
type SalesInput struct {
	InvoiceNo   string
	CustomerID  string
	Date        time.Time
	Lines       []SaleLine
	Description string
	Post        bool
	ActorID     string
}

// CreateSalesInvoice stores an unposted invoice and optionally posts it.
func (s *Service) CreateSalesInvoice(ctx context.Context, in SalesInput) (SalesInvoice, error) {
	if in.CustomerID == "" {
		return SalesInvoice{}, ErrCustomerRequired
	}
	if in.Date.IsZero() {
		return SalesInvoice{}, accounting.ErrDateRequired
	}
	if len(in.Lines) == 0 {
		return SalesInvoice{}, ErrInvalidQuantity
	}
	for _, l := range in.Lines {
		if l.Quantity <= 0 {
			return SalesInvoice{}, ErrInvalidQuantity
		}
		if l.Rate < 0 {
			return SalesInvoice{}, ErrInvalidRate
		}
	}
	var out SalesInvoice
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		ent, ok := tx.Entity(in.CustomerID)
		if !ok || ent.Type != accounting.EntityCustomer {
			return fmt.Errorf("%w: %s", accounting.ErrUnknownEntity, in.CustomerID)
		}
		for _, l := range in.Lines {
			if _, ok := tx.Item(l.ItemID); !ok {
				return fmt.Errorf("%w: %s", ErrItemNotFound, l.ItemID)
			}
		}
		inv, err := tx.SaveSalesInvoice(SalesInvoice{
			InvoiceNo:   in.InvoiceNo,
			CustomerID:  in.CustomerID,
			Date:        accounting.Day(in.Date),
			Status:      InvoiceUnposted,
			Lines:       append([]SaleLine(nil), in.Lines...),
			Description: in.Description,
		})
		if err != nil {
			return err
		}
		if in.Post {
			inv, err = postInvoice(tx, inv, ent, in.ActorID)
			if err != nil {
				return err
			}
		}
		out = inv
		return nil
	})
	if err != nil {
		return SalesInvoice{}, err
	}
	s.record(ctx, in.ActorID, "inventory.sale.create", "sales_invoice", out.ID, map[string]any{"status": string(out.Status), "total": accounting.Round2(out.Total())})
	return out, nil
}

// PostSalesInvoice posts an unposted invoice: Dr customer, Cr sales revenue.
func (s *Service) PostSalesInvoice(ctx context.Context, id, actorID string) (SalesInvoice, error) {
	var out SalesInvoice
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		inv, ok := tx.SalesInvoice(id)
		if !ok {
			return fmt.Errorf("%w: %s", ErrInvoiceNotFound, id)
		}
		if inv.Status == InvoicePosted {
			return fmt.Errorf("%w: %s", ErrInvoicePosted, id)
		}
		ent, ok := tx.Entity(inv.CustomerID)
		if !ok {
			return fmt.Errorf("%w: %s", accounting.ErrUnknownEntity, inv.CustomerID)
		}
		posted, err := postInvoice(tx, inv, ent, actorID)
		if err != nil {
			return err
		}
		out = posted
		return nil
	})
	if err != nil {
		return SalesInvoice{}, err
	}
	s.record(ctx, actorID, "inventory.sale.post", "sales_invoice", out.ID, map[string]any{"voucher_id": out.VoucherID})
	return out, nil
}

func postInvoice(tx TxRepository, inv SalesInvoice, customer accounting.Entity, actorID string) (SalesInvoice, error) {
	total := accounting.Round2(inv.Total())
	if total <= 0 {
		return SalesInvoice{}, fmt.Errorf("%w: invoice total must be positive", accounting.ErrInvalidAmount)
	}
	desc := inv.Description
	if desc == "" {
		desc = "Sales invoice " + invoiceLabel(inv) + " - " + customer.Name
	}
	entries, err := accounting.PostVoucher(tx, accounting.Voucher{
		Type:      accounting.EntryTypeJournal,
		Date:      inv.Date,
		CreatedBy: actorID,
		Source:    accounting.SourceSalesInvoice,
		Lines: []accounting.VoucherLine{
			{EntityID: customer.ID, Debit: total, Description: desc},
			{Account: accounting.AccountSalesRevenue, Credit: total, Description: desc},
		},
	})
	if err != nil {
		return SalesInvoice{}, err
	}
	inv.Status = InvoicePosted
	inv.VoucherID = entries[0].VoucherID
	return tx.SaveSalesInvoice(inv)
}

func invoiceLabel(inv SalesInvoice) string {
	if inv.InvoiceNo != "" {
		return inv.InvoiceNo
	}
	return inv.ID
}

// GetSalesInvoice returns an invoice by id.
func (s *Service) GetSalesInvoice(ctx context.Context, id string) (SalesInvoice, error) {
	var out SalesInvoice
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		inv, ok := tx.SalesInvoice(id)
		if !ok {
			return fmt.Errorf("%w: %s", ErrInvoiceNotFound, id)
		}
		out = inv
		return nil
	})
	return out, err
}

// RawPurchaseInput describes a landed raw material lot.
type RawPurchaseInput struct {
	OriginalTypeID    string
	SupplierID        string
	Date              time.Time
	WeightKg          float64
	ItemValue         Charge
	Freight           Charge
	Clearing          Charge
	Commission        Charge
	DiscountSurcharge Charge
	ActorID           string
}

// RecordRawPurchase stores the purchase and posts Dr raw material inventory
// against each payee's sub-ledger. Charges without a payee are owed to the
// supplier.
func (s *Service) RecordRawPurchase(ctx context.Context, in RawPurchaseInput) (RawMaterialPurchase, error) {
	if in.SupplierID == "" {
		return RawMaterialPurchase{}, ErrSupplierRequired
	}
	if in.WeightKg <= 0 {
		return RawMaterialPurchase{}, ErrInvalidQuantity
	}
	if in.Date.IsZero() {
		return RawMaterialPurchase{}, accounting.ErrDateRequired
	}
	purchase := RawMaterialPurchase{
		OriginalTypeID:    in.OriginalTypeID,
		SupplierID:        in.SupplierID,
		Date:              accounting.Day(in.Date),
		WeightKg:          in.WeightKg,
		ItemValue:         in.ItemValue,
		Freight:           in.Freight,
		Clearing:          in.Clearing,
		Commission:        in.Commission,
		DiscountSurcharge: in.DiscountSurcharge,
	}
	for _, c := range purchase.Charges() {
		if c.ConversionRate < 0 {
			return RawMaterialPurchase{}, ErrInvalidRate
		}
		if c.Amount != 0 && !c.IsBase() && c.ConversionRate == 0 {
			return RawMaterialPurchase{}, fmt.Errorf("%w: %s charge needs a conversion rate", ErrInvalidRate, c.Currency)
		}
	}
	if purchase.ItemValue.Amount <= 0 {
		return RawMaterialPurchase{}, fmt.Errorf("%w: item value must be positive", accounting.ErrInvalidAmount)
	}

	var out RawMaterialPurchase
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		ot, ok := tx.OriginalType(in.OriginalTypeID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrOriginalTypeNotFound, in.OriginalTypeID)
		}
		lines, err := purchaseLines(purchase, ot.Name)
		if err != nil {
			return err
		}
		entries, err := accounting.PostVoucher(tx, accounting.Voucher{
			Type:      accounting.EntryTypeJournal,
			Date:      purchase.Date,
			CreatedBy: in.ActorID,
			Source:    accounting.SourceRawPurchase,
			Lines:     lines,
		})
		if err != nil {
			return err
		}
		purchase.VoucherID = entries[0].VoucherID
		saved, err := tx.AppendRawPurchase(purchase)
		if err != nil {
			return err
		}
		out = saved
		return nil
	})
	if err != nil {
		return RawMaterialPurchase{}, err
	}
	s.record(ctx, in.ActorID, "inventory.raw.purchase", "raw_purchase", out.ID, map[string]any{"kg": out.WeightKg, "cost_usd": accounting.Round2(out.CostUSD())})
	return out, nil
}

// purchaseLines groups charges by payee and balances them with one debit.
func purchaseLines(p RawMaterialPurchase, grade string) ([]accounting.VoucherLine, error) {
	owed := make(map[string]float64)
	for _, c := range p.Charges() {
		if c.Amount == 0 {
			continue
		}
		payee := c.PayeeID
		if payee == "" {
			payee = p.SupplierID
		}
		owed[payee] += c.USD()
	}
	payees := make([]string, 0, len(owed))
	for id := range owed {
		payees = append(payees, id)
	}
	sort.Strings(payees)

	desc := fmt.Sprintf("Raw material %s %.2f kg", grade, p.WeightKg)
	lines := []accounting.VoucherLine{{Account: accounting.AccountRawMaterialInventory, Description: desc}}
	var total float64
	for _, id := range payees {
		amount := accounting.Round2(owed[id])
		if amount == 0 {
			continue
		}
		if amount < 0 {
			return nil, fmt.Errorf("%w: net charge owed to %s is negative", accounting.ErrInvalidAmount, id)
		}
		lines = append(lines, accounting.VoucherLine{EntityID: id, Credit: amount, Description: desc})
		total += amount
	}
	lines[0].Debit = accounting.Round2(total)
	return lines, nil
}

// RawIssueInput moves raw material into production.
type RawIssueInput struct {
	OriginalTypeID string
	Date           time.Time
	WeightKg       float64
	ActorID        string
}

// RecordRawIssue appends an issue of raw material.
func (s *Service) RecordRawIssue(ctx context.Context, in RawIssueInput) (RawMaterialIssue, error) {
	if in.WeightKg <= 0 {
		return RawMaterialIssue{}, ErrInvalidQuantity
	}
	if in.Date.IsZero() {
		return RawMaterialIssue{}, accounting.ErrDateRequired
	}
	var out RawMaterialIssue
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, ok := tx.OriginalType(in.OriginalTypeID); !ok {
			return fmt.Errorf("%w: %s", ErrOriginalTypeNotFound, in.OriginalTypeID)
		}
		is, err := tx.AppendRawIssue(RawMaterialIssue{OriginalTypeID: in.OriginalTypeID, Date: accounting.Day(in.Date), WeightKg: in.WeightKg})
		if err != nil {
			return err
		}
		out = is
		return nil
	})
	if err != nil {
		return RawMaterialIssue{}, err
	}
	s.record(ctx, in.ActorID, "inventory.raw.issue", "raw_issue", out.ID, map[string]any{"kg": out.WeightKg})
	return out, nil
}

// PackingItemInput creates or edits a packing material item.
type PackingItemInput struct {
	Name         string
	Unit         string
	OpeningStock float64
	ActorID      string
}

// CreatePackingItem adds a packing material item.
func (s *Service) CreatePackingItem(ctx context.Context, in PackingItemInput) (PackingMaterialItem, error) {
	if in.Name == "" {
		return PackingMaterialItem{}, ErrNameRequired
	}
	if in.OpeningStock < 0 {
		return PackingMaterialItem{}, ErrInvalidQuantity
	}
	var out PackingMaterialItem
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		item, err := tx.SavePackingItem(PackingMaterialItem{Name: in.Name, Unit: in.Unit, OpeningStock: in.OpeningStock})
		if err != nil {
			return err
		}
		out = item
		return nil
	})
	if err != nil {
		return PackingMaterialItem{}, err
	}
	s.record(ctx, in.ActorID, "inventory.packing.create", "packing_item", out.ID, nil)
	return out, nil
}

// UpdatePackingItem edits the name and unit of an existing item.
func (s *Service) UpdatePackingItem(ctx context.Context, id string, in PackingItemInput) (PackingMaterialItem, error) {
	var out PackingMaterialItem
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		item, ok := tx.PackingItem(id)
		if !ok {
			return fmt.Errorf("%w: %s", ErrPackingItemNotFound, id)
		}
		if in.Name != "" {
			item.Name = in.Name
		}
		if in.Unit != "" {
			item.Unit = in.Unit
		}
		saved, err := tx.SavePackingItem(item)
		if err != nil {
			return err
		}
		out = saved
		return nil
	})
	if err != nil {
		return PackingMaterialItem{}, err
	}
	s.record(ctx, in.ActorID, "inventory.packing.update", "packing_item", out.ID, map[string]any{"name": out.Name})
	return out, nil
}

// PackingPurchaseInput records packing material bought from a supplier or for cash.
type PackingPurchaseInput struct {
	ItemID        string
	Date          time.Time
	Quantity      float64
	UnitPrice     float64
	SupplierID    string
	CashAccountID string
	ActorID       string
}

// RecordPackingPurchase stores the purchase with a PMP id and posts
// Dr packing material against the supplier or the cash account.
func (s *Service) RecordPackingPurchase(ctx context.Context, in PackingPurchaseInput) (PackingMaterialPurchase, error) {
	if in.Quantity <= 0 {
		return PackingMaterialPurchase{}, ErrInvalidQuantity
	}
	if in.UnitPrice < 0 {
		return PackingMaterialPurchase{}, ErrInvalidRate
	}
	if in.Date.IsZero() {
		return PackingMaterialPurchase{}, accounting.ErrDateRequired
	}
	purchase := PackingMaterialPurchase{
		ID:         NewPackingPurchaseID(s.now()),
		ItemID:     in.ItemID,
		Date:       accounting.Day(in.Date),
		Quantity:   in.Quantity,
		UnitPrice:  in.UnitPrice,
		Total:      accounting.Round2(in.Quantity * in.UnitPrice),
		SupplierID: in.SupplierID,
	}
	var out PackingMaterialPurchase
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		item, ok := tx.PackingItem(in.ItemID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrPackingItemNotFound, in.ItemID)
		}
		if purchase.Total > 0 {
			desc := fmt.Sprintf("Packing material %s x %g", item.Name, purchase.Quantity)
			credit := accounting.VoucherLine{EntityID: in.SupplierID, Credit: purchase.Total, Description: desc}
			if in.SupplierID == "" {
				cash := in.CashAccountID
				if cash == "" {
					cash = accounting.AccountCash
				}
				credit.Account = cash
			}
			entries, err := accounting.PostVoucher(tx, accounting.Voucher{
				Type:      accounting.EntryTypeJournal,
				Date:      purchase.Date,
				CreatedBy: in.ActorID,
				Source:    accounting.SourcePackingPurchase,
				Lines: []accounting.VoucherLine{
					{Account: accounting.AccountPackingMaterial, Debit: purchase.Total, Description: desc},
					credit,
				},
			})
			if err != nil {
				return err
			}
			purchase.VoucherID = entries[0].VoucherID
		}
		saved, err := tx.AppendPackingPurchase(purchase)
		if err != nil {
			return err
		}
		out = saved
		return nil
	})
	if err != nil {
		return PackingMaterialPurchase{}, err
	}
	s.record(ctx, in.ActorID, "inventory.packing.purchase", "packing_purchase", out.ID, map[string]any{"qty": out.Quantity, "total": out.Total})
	return out, nil
}

func (s *Service) record(ctx context.Context, actor, action, entity, id string, meta map[string]any) {
	if s.audit == nil || id == "" {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Actor:    actor,
		Action:   action,
		Entity:   entity,
		EntityID: id,
		Meta:     meta,
		At:       s.now(),
	})
}
