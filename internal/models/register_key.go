package models

import "strings"

// RegisterKey identifies a register inside a document. Name and Brand alone
// are not unique, so Occurrence selects the n-th (0-based) item carrying the
// same pair in document order.
type RegisterKey struct {
	Name       string
	Brand      string
	Occurrence int
}

// KeyOf returns the RegisterKey of the item at index i of regs.
func KeyOf(regs Registers, i int) RegisterKey {
	k := RegisterKey{Name: regs[i].Name, Brand: regs[i].Brand}
	for j := 0; j < i; j++ {
		if regs[j].Name == k.Name && regs[j].Brand == k.Brand {
			k.Occurrence++
		}
	}
	return k
}

// Find returns the index of the register matching k, or -1.
// Name and brand are compared after trimming surrounding whitespace.
func (k RegisterKey) Find(regs Registers) int {
	name, brand := strings.TrimSpace(k.Name), strings.TrimSpace(k.Brand)
	seen := 0
	for i, it := range regs {
		if strings.TrimSpace(it.Name) != name || strings.TrimSpace(it.Brand) != brand {
			continue
		}
		if seen == k.Occurrence {
			return i
		}
		seen++
	}
	return -1
}
