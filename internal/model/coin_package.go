package model

// CoinPackage is a catalog entry.  The catalog is configuration data and is
// never mutated at runtime.
type CoinPackage struct {
    ID      string `json:"id"`
    Name    string `json:"name"`
    Coins   int64  `json:"coins"`
    Price   int64  `json:"price"`
    Bonus   int64  `json:"bonus"`
    Popular bool   `json:"popular,omitempty"`
}

var catalog = []CoinPackage{
    {ID: "1", Name: "Starter Pack", Coins: 100, Price: 100, Bonus: 0},
    {ID: "2", Name: "Popular Pack", Coins: 500, Price: 500, Bonus: 50, Popular: true},
    {ID: "3", Name: "Premium Pack", Coins: 1000, Price: 1000, Bonus: 150},
    {ID: "4", Name: "Ultimate Pack", Coins: 2500, Price: 2500, Bonus: 500},
}

// Catalog returns a copy of the coin packages on sale.
func Catalog() []CoinPackage {
    out := make([]CoinPackage, len(catalog))
    copy(out, catalog)
    return out
}

// FindPackage looks a package up by id.
func FindPackage(id string) (CoinPackage, bool) {
    for _, p := range catalog {
        if p.ID == id {
            return p, true
        }
    }
    return CoinPackage{}, false
}
