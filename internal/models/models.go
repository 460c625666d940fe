package models

import "time"

// Category of a product
type Category string

const (
	CategoryVegetables Category = "vegetables"
	CategoryGrains     Category = "grains"
	CategoryFruits     Category = "fruits"

	// CategoryAll disables the category filter when listing
	CategoryAll Category = "all"
)

// Valid reports whether c is one of the sellable categories
func (c Category) Valid() bool {
	switch c {
	case CategoryVegetables, CategoryGrains, CategoryFruits:
		return true
	}
	return false
}

// Product represents a product in the catalog
type Product struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	NameID    string   `json:"nameId"`
	Price     int64    `json:"price"`
	Category  Category `json:"category"`
	CreatedAt int64    `json:"createdAt"`
	Image     *string  `json:"image"`
	Unit      string   `json:"unit"`
	Stock     int      `json:"stock"`
	Farmer    string   `json:"farmer"`
}

// CartLine is a cart entry carrying a snapshot of the product taken on first add
type CartLine struct {
	ProductID string   `json:"productId"`
	Name      string   `json:"name"`
	NameID    string   `json:"nameId"`
	Price     int64    `json:"price"`
	Stock     int      `json:"stock"`
	Unit      string   `json:"unit"`
	Farmer    string   `json:"farmer"`
	Category  Category `json:"category"`
	Image     *string  `json:"image"`
	Quantity  int      `json:"quantity"`
}

// Subtotal is price times quantity
func (l CartLine) Subtotal() int64 {
	return l.Price * int64(l.Quantity)
}

// PaymentMethod is one of the fixed checkout options
type PaymentMethod string

const (
	PaymentMethodBank  PaymentMethod = "bank"
	PaymentMethodGoPay PaymentMethod = "gopay"
	PaymentMethodOVO   PaymentMethod = "ovo"
	PaymentMethodDANA  PaymentMethod = "dana"
)

// PaymentMethods lists the accepted methods in display order
var PaymentMethods = []PaymentMethod{
	PaymentMethodBank,
	PaymentMethodGoPay,
	PaymentMethodOVO,
	PaymentMethodDANA,
}

// Valid reports whether m is an accepted payment method
func (m PaymentMethod) Valid() bool {
	for _, pm := range PaymentMethods {
		if m == pm {
			return true
		}
	}
	return false
}

// ShippingInfo is the delivery address entered at checkout
type ShippingInfo struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Phone      string `json:"phone"`
}

// Order is an immutable record of a completed checkout
type Order struct {
	ID            string        `json:"id"`
	OrderNumber   string        `json:"orderNumber"`
	Date          time.Time     `json:"date"`
	Total         int64         `json:"total"`
	DeliveryFee   int64         `json:"deliveryFee"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	TransactionID string        `json:"transactionId,omitempty"`
	Shipping      ShippingInfo  `json:"shipping"`
	Items         []CartLine    `json:"items"`
}

// GrandTotal is what the buyer paid, delivery included
func (o Order) GrandTotal() int64 {
	return o.Total + o.DeliveryFee
}

// UserType distinguishes sellers from buyers
type UserType string

const (
	UserTypeFarmer UserType = "farmer"
	UserTypeBuyer  UserType = "buyer"
)

func (t UserType) Valid() bool {
	return t == UserTypeFarmer || t == UserTypeBuyer
}

// User is the session record
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Phone     string    `json:"phone"`
	UserType  UserType  `json:"userType"`
	Photo     *string   `json:"photo,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Account is a user directory entry
type Account struct {
	User
	PasswordHash string `json:"passwordHash"`
}

// ThemeMode preference
type ThemeMode string

const (
	ThemeLight  ThemeMode = "light"
	ThemeDark   ThemeMode = "dark"
	ThemeSystem ThemeMode = "system"
)

func (m ThemeMode) Valid() bool {
	switch m {
	case ThemeLight, ThemeDark, ThemeSystem:
		return true
	}
	return false
}

// Language preference
type Language string

const (
	LanguageID Language = "id"
	LanguageEN Language = "en"
)

func (l Language) Valid() bool {
	return l == LanguageID || l == LanguageEN
}

// ComplaintStatus values are the ones shown to buyers
type ComplaintStatus string

const (
	ComplaintPending  ComplaintStatus = "Pending"
	ComplaintAccepted ComplaintStatus = "Diterima"
	ComplaintRejected ComplaintStatus = "Ditolak"
)

func (s ComplaintStatus) Valid() bool {
	switch s {
	case ComplaintPending, ComplaintAccepted, ComplaintRejected:
		return true
	}
	return false
}

// Complaint filed by a buyer
type Complaint struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	ProofImage  *string         `json:"proofImage,omitempty"`
	Status      ComplaintStatus `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
}
