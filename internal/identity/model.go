package identity

import "time"

// SellerProfile carries the shop-facing fields a seller account exposes.
type SellerProfile struct {
	ShopName     string `json:"shop_name"`
	BusinessName string `json:"business_name"`
	ContactPhone string `json:"contact_phone"`
}

// Address is one entry of a user's delivery address book. The whole list is
// replaced wholesale on update, never patched element-wise.
type Address struct {
	Label   string `json:"label"`
	Line1   string `json:"line1"`
	City    string `json:"city"`
	Country string `json:"country"`
	Phone   string `json:"phone"`
}

// User represents a marketplace account. Every user is a buyer; seller
// capability is a flag plus a profile, and sellers can browse as buyers by
// toggling SellerModeActive without logging out.
type User struct {
	ID               string
	Email            string
	PasswordHash     []byte
	DisplayName      string
	IsSeller         bool
	SellerModeActive bool
	Seller           SellerProfile
	Addresses        []Address
	TokenVersion     int
	CreatedAt        time.Time
}

// ProfileComplete reports whether the account has enough data to transact:
// a display name and at least one delivery address.
func (u User) ProfileComplete() bool {
	return u.DisplayName != "" && len(u.Addresses) > 0
}

// Credentials is the registration/login request structure.
type Credentials struct {
	Email       string
	Password    string
	DisplayName string
}
