// Package reports derives sales statistics from Paid orders. Compute
// is a pure function: no backend calls, no mutation of its input.
package reports

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/lutong-pos/terminal/internal/backend"
)

// profitMargin is the estimated profit share of each line total. A
// heuristic with no server-side backing; the backend does not track
// cost prices.
var profitMargin = decimal.NewFromFloat(0.3)

// Slice is one (name, value) pair for a distribution chart.
type Slice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Stats is the aggregate view of all paid orders.
type Stats struct {
	TotalOrders       int             `json:"totalOrders"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	TotalProfit       decimal.Decimal `json:"totalProfit"`
	MostBoughtProduct string          `json:"mostBoughtProduct"`
	MostUsedTable     string          `json:"mostUsedTable"`
	ProductData       []Slice         `json:"productData"`
	TableData         []Slice         `json:"tableData"`
}

// Compute aggregates the given paid orders. Ties for most-bought
// product and most-used table go to the first key encountered; with no
// qualifying orders both read "-". Distribution slices keep
// first-encounter order for stable chart colors.
func Compute(paid []backend.Order) Stats {
	stats := Stats{
		TotalOrders:       len(paid),
		TotalRevenue:      decimal.Zero,
		TotalProfit:       decimal.Zero,
		MostBoughtProduct: "-",
		MostUsedTable:     "-",
	}

	productCount := make(map[string]int)
	var productOrder []string
	tableCount := make(map[int]int)
	var tableOrder []int

	for _, order := range paid {
		stats.TotalRevenue = stats.TotalRevenue.Add(order.Total)

		for _, item := range order.Items {
			stats.TotalProfit = stats.TotalProfit.Add(item.LineTotal.Mul(profitMargin))

			name := item.ProductName
			if name == "" {
				name = "Product #" + strconv.FormatInt(item.ProductID, 10)
			}
			if _, seen := productCount[name]; !seen {
				productOrder = append(productOrder, name)
			}
			productCount[name] += item.Quantity
		}

		if order.TableID != nil {
			if _, seen := tableCount[*order.TableID]; !seen {
				tableOrder = append(tableOrder, *order.TableID)
			}
			tableCount[*order.TableID]++
		}
	}

	best := 0
	for _, name := range productOrder {
		if productCount[name] > best {
			best = productCount[name]
			stats.MostBoughtProduct = name
		}
		stats.ProductData = append(stats.ProductData, Slice{Name: name, Value: productCount[name]})
	}

	best = 0
	for _, table := range tableOrder {
		if tableCount[table] > best {
			best = tableCount[table]
			stats.MostUsedTable = strconv.Itoa(table)
		}
		stats.TableData = append(stats.TableData, Slice{
			Name:  "Table " + strconv.Itoa(table),
			Value: tableCount[table],
		})
	}

	return stats
}
