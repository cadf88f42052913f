package accounting

import (
	"fmt"
	"time"
)

var voucherPrefixes = map[EntryType]string{
	EntryTypeReceipt: "RV",
	EntryTypePayment: "PV",
	EntryTypeExpense: "EV",
	EntryTypeJournal: "JV",
}

// FormatVoucherID renders the running number of a voucher kind, e.g. RV-001.
func FormatVoucherID(kind EntryType, number int) string {
	prefix, ok := voucherPrefixes[kind]
	if !ok {
		prefix = voucherPrefixes[EntryTypeJournal]
	}
	return fmt.Sprintf("%s-%03d", prefix, number)
}

const (
	assetVoucherPrefix        = "JV-FA-"
	depreciationVoucherPrefix = "JV-DEP-"
)

// AssetVoucherID is the acquisition voucher of a fixed asset.
func AssetVoucherID(assetID string) string {
	return assetVoucherPrefix + assetID
}

// DepreciationVoucherID is the voucher of a depreciation batch posted at t.
func DepreciationVoucherID(t time.Time) string {
	return fmt.Sprintf("%s%d", depreciationVoucherPrefix, t.UnixMilli())
}
