package basket

import (
	"github.com/noah-isme/backend-store/internal/inventory"
)

// Line pairs a resolved product with its requested quantity.
type Line struct {
	Product inventory.Product
	Qty     int
}

// DiscountRecipients decides which products receive the category introductory
// discount. Products are grouped into per-category buckets in the order the
// lines are processed, keeping distinct product ids only. Every category whose
// bucket holds more than one distinct product marks its first-seen product as
// a recipient. Recipient status is boolean per product: belonging to several
// qualifying categories never stacks the discount.
func DiscountRecipients(lines []Line) map[int64]bool {
	var order []string
	buckets := map[string][]int64{}
	seen := map[string]map[int64]bool{}
	for _, ln := range lines {
		for _, c := range ln.Product.Categories {
			if seen[c.Name] == nil {
				seen[c.Name] = map[int64]bool{}
				order = append(order, c.Name)
			}
			if seen[c.Name][ln.Product.ID] {
				continue
			}
			seen[c.Name][ln.Product.ID] = true
			buckets[c.Name] = append(buckets[c.Name], ln.Product.ID)
		}
	}

	recipients := map[int64]bool{}
	for _, name := range order {
		ids := buckets[name]
		if len(ids) > 1 {
			recipients[ids[0]] = true
		}
	}
	return recipients
}
