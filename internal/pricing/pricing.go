// Package pricing computes the coin price of an uploaded resource. The
// numbers here feed the coin economy (earned on upload, charged on
// download) and must stay stable: changing a threshold reprices the whole
// catalogue.
package pricing

import "strings"

// MinPrice is the floor applied to every computed price.
const MinPrice = 2

const mib = 1024 * 1024

// CoinPrice maps a file type and size to a coin price. sizeBytes <= 0
// means the size is unknown and no size surcharge applies. Deterministic,
// total, no side effects.
func CoinPrice(fileType string, sizeBytes int64) int {
	price := basePrice(fileType)

	if sizeBytes > 0 {
		sizeInMB := float64(sizeBytes) / mib
		switch {
		case sizeInMB > 10:
			price += 2
		case sizeInMB > 5:
			price += 1
		}
	}

	if price < MinPrice {
		price = MinPrice
	}
	return price
}

func basePrice(fileType string) int {
	switch strings.ToUpper(fileType) {
	case "PDF":
		return 5
	case "DOC", "DOCX":
		return 4
	case "IMAGE", "JPG", "PNG":
		return 3
	default:
		return 3
	}
}
