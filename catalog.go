package main

// Product is one fixed catalog entry. Price is in minor currency units.
// Amount is the coin grant for coin packs; it is 0 for autoclick tiers,
// whose grants are the fixed per-tier increments below.
type Product struct {
	Name   string
	Amount int64
	Price  int64
}

const (
	coinProductPrefix = "coins"
	autoProductPrefix = "auto"
)

var products = map[string]Product{
	"coins100":   {Name: "100 coins", Amount: 100, Price: 100},
	"coins1000":  {Name: "1 000 coins", Amount: 1000, Price: 900},
	"coins10000": {Name: "10 000 coins", Amount: 10000, Price: 7000},
	"auto10":     {Name: "10 autoclicks", Amount: 0, Price: 50},
	"auto100":    {Name: "100 autoclicks", Amount: 0, Price: 400},
	"auto1000":   {Name: "1 000 autoclicks", Amount: 0, Price: 2500},
}

// productOrder fixes the shop listing order.
var productOrder = []string{
	"coins100",
	"coins1000",
	"coins10000",
	"auto10",
	"auto100",
	"auto1000",
}

// Autoclick tiers credit a fixed count per tier, deliberately not derived
// from the product's Amount field.
var autoclickIncrements = map[string]int64{
	"auto10":   10,
	"auto100":  100,
	"auto1000": 1000,
}

func lookupProduct(id string) (Product, bool) {
	p, ok := products[id]
	return p, ok
}
