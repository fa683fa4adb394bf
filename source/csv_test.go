package source

import (
	"strings"
	"testing"
)

func TestReadCSV(t *testing.T) {
	csvData := `Kind,ID,Date,Status,Amount
order,PO-1,2024-01-10,Received,"1,000.00"
return,PR-1,2024-01-15,Approved,200
payment,PAY-1,20/01/2024,Completed,300
refund,X-1,2024-01-21,Completed,1
order,PO-2,2024-01-12,Draft,5000`

	raw, err := ReadCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}

	if len(raw.Orders) != 2 {
		t.Fatalf("Expected 2 orders, got %d", len(raw.Orders))
	}
	if len(raw.Returns) != 1 {
		t.Errorf("Expected 1 return, got %d", len(raw.Returns))
	}
	if len(raw.Payments) != 1 {
		t.Errorf("Expected 1 payment, got %d", len(raw.Payments))
	}

	snap := NewNormalizer().Normalize(raw)
	if snap.Orders[0].ID != "PO-1" {
		t.Errorf("Expected order ID PO-1, got %s", snap.Orders[0].ID)
	}
	if snap.Orders[0].Amount.String() != "1000" {
		t.Errorf("Expected amount 1000, got %s", snap.Orders[0].Amount.String())
	}
	if snap.Payments[0].Date != "20/01/2024" {
		t.Errorf("Expected raw payment date to be kept, got %s", snap.Payments[0].Date)
	}
}

func TestReadCSV_MissingKindColumn(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("id,date,amount\nPO-1,2024-01-01,5"))
	if err == nil {
		t.Error("Expected error for CSV without kind column, got nil")
	}
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	if err == nil {
		t.Error("Expected error for empty CSV, got nil")
	}
}

func TestReadCSV_ShortRows(t *testing.T) {
	csvData := "id,date,status,amount,kind\nPO-1,2024-01-01\npayment-row,2024-01-02,paid,4,payment"

	raw, err := ReadCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if len(raw.Orders) != 0 || len(raw.Payments) != 1 {
		t.Errorf("Expected only the complete payment row, got %d orders and %d payments", len(raw.Orders), len(raw.Payments))
	}
}
