// Package role derives the active marketplace role from a profile.
package role

import "github.com/sokoni/sokoni/client/rest"

// Role is the active marketplace persona.
type Role int

const (
	Buyer Role = iota
	Seller
)

func (r Role) String() string {
	if r == Seller {
		return "seller"
	}
	return "buyer"
}

// Resolve returns Seller only when the account holds a seller profile AND
// seller mode is switched on. A seller browsing in buyer mode is a Buyer.
func Resolve(p rest.Profile) Role {
	if p.IsSeller && p.SellerModeActive {
		return Seller
	}
	return Buyer
}

// Shop returns the seller profile when the resolved role is Seller.
func Shop(p rest.Profile) (rest.SellerProfile, bool) {
	if Resolve(p) != Seller {
		return rest.SellerProfile{}, false
	}
	return p.Seller, true
}
