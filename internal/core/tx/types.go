package tx

import "fmt"

// Type represents a transaction type code
type Type uint16

// Transaction type codes of the sale program
const (
	TypeInvalid Type = 0xFFFF // Invalid/unknown type

	TypeCreateStore         Type = 0
	TypeInitSellingResource Type = 1
	TypeCreateMarket        Type = 2
	TypeBuy                 Type = 3
	TypeCloseMarket         Type = 4
	TypeWithdraw            Type = 5
	TypeChangeMarket        Type = 6
	TypeClaimResource       Type = 7
)

var typeNames = map[Type]string{
	TypeCreateStore:         "CreateStore",
	TypeInitSellingResource: "InitSellingResource",
	TypeCreateMarket:        "CreateMarket",
	TypeBuy:                 "Buy",
	TypeCloseMarket:         "CloseMarket",
	TypeWithdraw:            "Withdraw",
	TypeChangeMarket:        "ChangeMarket",
	TypeClaimResource:       "ClaimResource",
}

var typeByName = func() map[string]Type {
	m := make(map[string]Type, len(typeNames))
	for t, name := range typeNames {
		m[name] = t
	}
	return m
}()

// String returns the transaction type name
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", uint16(t))
}

// TypeFromName returns the Type for a transaction type name
func TypeFromName(name string) (Type, bool) {
	t, ok := typeByName[name]
	return t, ok
}
