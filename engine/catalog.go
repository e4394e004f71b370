package engine

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Asset kinds understood by the Sim engine's catalog.
const (
	AssetText   = "text"
	AssetBlob   = "blob"
	AssetPrefab = "prefab"
	AssetBroken = "broken"
)

// Text is a loaded text asset.
type Text struct {
	Key  string
	Body string
}

// Blob is a loaded binary asset.
type Blob struct {
	Key  string
	Data []byte
}

// Prefab is a loadable template for spawned instances.
type Prefab struct {
	Key   string
	Specs []ComponentSpec
}

// ComponentSpec names a component type and its construction parameters.
type ComponentSpec struct {
	Type   string         `json:"type"`
	Params map[string]any `json:"params,omitempty"`
}

// Catalog lists the assets a Sim engine can serve.
type Catalog struct {
	Assets []CatalogAsset `json:"assets"`
}

// CatalogAsset is one catalog entry. Body is used by text assets, Data
// (base64) by blobs, Components by prefabs, and Reason by broken entries,
// which fail every load with that message.
type CatalogAsset struct {
	Key        string          `json:"key"`
	Type       string          `json:"type"`
	Body       string          `json:"body,omitempty"`
	Data       string          `json:"data,omitempty"`
	Reason     string          `json:"reason,omitempty"`
	Components []ComponentSpec `json:"components,omitempty"`
}

// ParseCatalog decodes a JSON catalog and validates its entries.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	seen := make(map[string]bool, len(c.Assets))
	for i, a := range c.Assets {
		if a.Key == "" {
			return nil, fmt.Errorf("catalog entry %d: empty key", i)
		}
		if seen[a.Key] {
			return nil, fmt.Errorf("catalog entry %d: duplicate key %q", i, a.Key)
		}
		seen[a.Key] = true
		switch a.Type {
		case AssetText, AssetBlob, AssetPrefab, AssetBroken:
		default:
			return nil, fmt.Errorf("catalog entry %q: unknown type %q", a.Key, a.Type)
		}
	}
	return &c, nil
}

// build materializes the catalog entry into its asset value.
func (a CatalogAsset) build() (any, error) {
	switch a.Type {
	case AssetText:
		return &Text{Key: a.Key, Body: a.Body}, nil
	case AssetBlob:
		data, err := base64.StdEncoding.DecodeString(a.Data)
		if err != nil {
			return nil, fmt.Errorf("decode blob %q: %w", a.Key, err)
		}
		return &Blob{Key: a.Key, Data: data}, nil
	case AssetPrefab:
		return &Prefab{Key: a.Key, Specs: a.Components}, nil
	case AssetBroken:
		reason := a.Reason
		if reason == "" {
			reason = "asset marked broken"
		}
		return nil, fmt.Errorf("load %q: %s", a.Key, reason)
	}
	return nil, fmt.Errorf("unknown asset type %q", a.Type)
}
