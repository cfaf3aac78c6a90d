package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// RegisterItem is a line of an invoice. CurrentAmount is the only field the
// user edits.
type RegisterItem struct {
	Name          string   `json:"name"`
	Brand         string   `json:"brand"`
	TotalSpace    float64  `json:"totalSpace"`
	Image         string   `json:"image,omitempty"`
	Flag          *int     `json:"flag,omitempty"`
	CurrentAmount *float64 `json:"currentAmount,omitempty"`
}

// Registers is the register list of a document. A missing, null or
// non-array value decodes to an empty list instead of failing the document.
type Registers []RegisterItem

// UnmarshalJSON implements json.Unmarshaler.
func (r *Registers) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		*r = nil
		return nil
	}
	var items []RegisterItem
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return err
	}
	*r = items
	return nil
}

// EditStatus records whether a document was saved or exported by the user.
type EditStatus struct {
	Saved        bool       `json:"saved"`
	Exported     bool       `json:"exported"`
	LastSaved    *time.Time `json:"lastSaved,omitempty"`
	LastExported *time.Time `json:"lastExported,omitempty"`
	ExportPath   string     `json:"exportPath,omitempty"`
}

// InvoiceDocument is an invoice as found in the JSON source files. When it
// carries an EditStatus it is an edit record rather than a pristine copy.
type InvoiceDocument struct {
	ID              int64       `json:"id"`
	FullInvoiceName string      `json:"fullInvoiceName"`
	ObjCompany      string      `json:"objCompany"`
	CensoredDt      string      `json:"censoredDt"`
	UpdatedDt       string      `json:"updatedDt,omitempty"`
	MainRegisters   Registers   `json:"mainRegisters"`
	EditStatus      *EditStatus `json:"editStatus,omitempty"`
}

// EffectiveTimestamp returns UpdatedDt if set, otherwise CensoredDt.
func (d *InvoiceDocument) EffectiveTimestamp() string {
	if d.UpdatedDt != "" {
		return d.UpdatedDt
	}
	return d.CensoredDt
}

// Clone returns a deep copy of d.
func (d *InvoiceDocument) Clone() *InvoiceDocument {
	if d == nil {
		return nil
	}
	c := *d
	if d.MainRegisters != nil {
		c.MainRegisters = make(Registers, len(d.MainRegisters))
		for i, item := range d.MainRegisters {
			c.MainRegisters[i] = item.clone()
		}
	}
	if d.EditStatus != nil {
		es := *d.EditStatus
		if es.LastSaved != nil {
			t := *es.LastSaved
			es.LastSaved = &t
		}
		if es.LastExported != nil {
			t := *es.LastExported
			es.LastExported = &t
		}
		c.EditStatus = &es
	}
	return &c
}

func (it RegisterItem) clone() RegisterItem {
	c := it
	if it.Flag != nil {
		f := *it.Flag
		c.Flag = &f
	}
	if it.CurrentAmount != nil {
		a := *it.CurrentAmount
		c.CurrentAmount = &a
	}
	return c
}

// ScanFilter narrows a scan. A nil ID and an empty Company match everything.
type ScanFilter struct {
	ID      *int64
	Company string
}
