package role

import (
	"testing"

	"github.com/sokoni/sokoni/client/rest"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		name    string
		profile rest.Profile
		want    Role
	}{
		{"plain buyer", rest.Profile{}, Buyer},
		{"seller browsing as buyer", rest.Profile{IsSeller: true, SellerModeActive: false}, Buyer},
		{"active seller", rest.Profile{IsSeller: true, SellerModeActive: true}, Seller},
		// Mode flag without the capability must never grant seller.
		{"mode without capability", rest.Profile{IsSeller: false, SellerModeActive: true}, Buyer},
	}
	for _, tc := range cases {
		if got := Resolve(tc.profile); got != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}

func TestShop(t *testing.T) {
	p := rest.Profile{
		IsSeller:         true,
		SellerModeActive: true,
		Seller:           rest.SellerProfile{ShopName: "Amina's Fabrics"},
	}
	shop, ok := Shop(p)
	if !ok || shop.ShopName != "Amina's Fabrics" {
		t.Fatalf("expected shop profile, got %+v ok=%v", shop, ok)
	}

	p.SellerModeActive = false
	if _, ok := Shop(p); ok {
		t.Fatalf("dormant seller must expose no shop")
	}
}
