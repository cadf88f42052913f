package assets

import (
	"errors"
	"time"
)

// Status tracks the lifecycle of a fixed asset.
type Status string

const (
	StatusActive           Status = "Active"
	StatusFullyDepreciated Status = "FullyDepreciated"
)

// AssetType groups assets, e.g. machinery or vehicles.
type AssetType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FixedAsset is an item in the fixed-asset register.
type FixedAsset struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	AssetTypeID   string    `json:"assetTypeId"`
	PurchaseDate  time.Time `json:"purchaseDate"`
	PurchaseValue float64   `json:"purchaseValue"`
	Status        Status    `json:"status"`
}

// DepreciationEntry records one depreciation charge against an asset.
type DepreciationEntry struct {
	ID          string    `json:"id"`
	AssetID     string    `json:"assetId"`
	Date        time.Time `json:"date"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	VoucherID   string    `json:"voucherId"`
}

// CurrentValue returns purchase value less every depreciation on the asset.
func CurrentValue(asset FixedAsset, history []DepreciationEntry) float64 {
	value := asset.PurchaseValue
	for _, d := range history {
		if d.AssetID == asset.ID {
			value -= d.Amount
		}
	}
	return value
}

// AssetView is an asset with its derived book value.
type AssetView struct {
	FixedAsset
	TypeName                string  `json:"typeName"`
	AccumulatedDepreciation float64 `json:"accumulatedDepreciation"`
	CurrentValue            float64 `json:"currentValue"`
}

var (
	// ErrInvalidRate indicates a depreciation rate outside (0, 100].
	ErrInvalidRate = errors.New("assets: depreciation rate must be greater than 0 and at most 100")
	// ErrAssetNotFound indicates an unknown asset id.
	ErrAssetNotFound = errors.New("assets: asset not found")
	// ErrAssetTypeNotFound indicates an unknown asset type.
	ErrAssetTypeNotFound = errors.New("assets: asset type not found")
	// ErrInvalidValue indicates a non-positive purchase value.
	ErrInvalidValue = errors.New("assets: purchase value must be positive")
	// ErrNameRequired indicates an empty asset name.
	ErrNameRequired = errors.New("assets: name required")
	// ErrNothingToDepreciate indicates every selected asset is fully depreciated.
	ErrNothingToDepreciate = errors.New("assets: nothing to depreciate")
)
