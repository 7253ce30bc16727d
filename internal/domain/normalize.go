package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// NormalizeInvoice maps a raw extracted record onto the canonical
// InvoiceRecord. Upstream extraction emits either snake_case or camelCase
// field names depending on provider; both are accepted here so no downstream
// component ever touches raw keys. Unknown or missing fields map to nil,
// negative numerics are treated as absent per the data model invariant.
// Side-effect free.
func NormalizeInvoice(raw map[string]interface{}) *InvoiceRecord {
	inv := &InvoiceRecord{
		VendorName:    stringField(raw, "vendor_name", "vendorName"),
		VendorAddress: stringField(raw, "vendor_address", "vendorAddress"),
		VendorEmail:   stringField(raw, "vendor_email", "vendorEmail"),
		VendorPhone:   stringField(raw, "vendor_phone", "vendorPhone"),
		InvoiceNumber: stringField(raw, "invoice_number", "invoiceNumber"),
		InvoiceDate:   stringField(raw, "invoice_date", "invoiceDate", "date"),
		DueDate:       stringField(raw, "due_date", "dueDate"),
		Subtotal:      numberField(raw, "subtotal", "subTotal"),
		Tax:           numberField(raw, "tax", "taxAmount", "tax_amount"),
		TotalAmount:   numberField(raw, "total_amount", "totalAmount", "total"),
		Currency:      stringField(raw, "currency", "currencyCode", "currency_code"),
		Notes:         stringField(raw, "notes", "note"),
	}

	items := listField(raw, "line_items", "lineItems")
	for _, it := range items {
		m, ok := it.(map[string]interface{})
		if !ok {
			continue
		}
		item := LineItem{
			Quantity:  numberField(m, "quantity", "qty"),
			UnitPrice: numberField(m, "unit_price", "unitPrice", "rate"),
			Amount:    numberField(m, "amount", "total"),
		}
		if desc := stringField(m, "description", "desc"); desc != nil {
			item.Description = *desc
		}
		inv.LineItems = append(inv.LineItems, item)
	}

	return inv
}

func stringField(raw map[string]interface{}, keys ...string) *string {
	for _, key := range keys {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" || strings.EqualFold(s, "null") {
			continue
		}
		return &s
	}
	return nil
}

func numberField(raw map[string]interface{}, keys ...string) *float64 {
	for _, key := range keys {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		f, ok := toFloat(v)
		if !ok || f < 0 {
			continue
		}
		return &f
	}
	return nil
}

func listField(raw map[string]interface{}, keys ...string) []interface{} {
	for _, key := range keys {
		if v, ok := raw[key].([]interface{}); ok {
			return v
		}
	}
	return nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
