// Package datasets provides embedded vendor type datasets bundled with the binary.
package datasets

import _ "embed"

// ShopifyJSON is the bundled Shopify Liquid object dataset, embedded at build time.
//
//go:embed shopify/types.json
var ShopifyJSON []byte
