package inventory

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/usman-global/usman-books/internal/accounting"
)

// PackingPosition is stock in hand of one packing material item.
type PackingPosition struct {
	ItemID    string  `json:"itemId"`
	Name      string  `json:"name"`
	Unit      string  `json:"unit"`
	Opening   float64 `json:"opening"`
	Purchased float64 `json:"purchased"`
	InHand    float64 `json:"inHand"`
	Cost      float64 `json:"cost"`
}

// PackingStock returns opening stock plus purchases dated on or before asOf.
// Consumption is not recorded, so InHand is an upper bound.
func PackingStock(items []PackingMaterialItem, purchases []PackingMaterialPurchase, asOf time.Time) []PackingPosition {
	asOf = accounting.Day(asOf)
	out := make([]PackingPosition, 0, len(items))
	for _, item := range items {
		pos := PackingPosition{ItemID: item.ID, Name: item.Name, Unit: item.Unit, Opening: item.OpeningStock}
		for _, p := range purchases {
			if p.ItemID == item.ID && !accounting.Day(p.Date).After(asOf) {
				pos.Purchased += p.Quantity
				pos.Cost += p.Total
			}
		}
		pos.InHand = pos.Opening + pos.Purchased
		pos.Cost = accounting.Round2(pos.Cost)
		out = append(out, pos)
	}
	return out
}

// NewPackingPurchaseID returns PMP-<base36 unix millis>-<4 hex>.
func NewPackingPurchaseID(now time.Time) string {
	return "PMP-" + strconv.FormatInt(now.UnixMilli(), 36) + "-" + uuid.NewString()[:4]
}
