package billtype

import (
	"strings"
	"testing"
)

func TestValidateAcceptsHospitalBill(t *testing.T) {
	text := `CITY GENERAL HOSPITAL
Patient Name: R. Kumar
Consultation - Dr. Mehta
Pharmacy: Paracetamol Tablet
Laboratory: Blood test
Nursing charges`

	res := Validate(text)
	if !res.IsMedicalBill {
		t.Fatalf("expected acceptance, got rejection: %q", res.Reason)
	}
	if res.Confidence < 50 {
		t.Errorf("confidence = %d, want >= 50 for a strongly medical document", res.Confidence)
	}
}

func TestValidateRejectsGroceryBill(t *testing.T) {
	text := `SUPERMARKET DAILY NEEDS
Vegetables  120.00
Fruits      250.00
Bakery      80.00
Grocery total 450.00`

	res := Validate(text)
	if res.IsMedicalBill {
		t.Fatal("grocery bill accepted as medical")
	}
	if !strings.Contains(res.Reason, "retail/grocery") {
		t.Errorf("reason %q should name the retail/grocery category", res.Reason)
	}
	if res.Confidence < 50 {
		t.Errorf("confidence = %d, want >= 50 with several grocery keywords", res.Confidence)
	}
}

func TestValidateRejectsRestaurantBill(t *testing.T) {
	text := `THE SPICE RESTAURANT
Dine in order
Beverages 180.00
Service charge 10%`

	res := Validate(text)
	if res.IsMedicalBill {
		t.Fatal("restaurant bill accepted as medical")
	}
	if !strings.Contains(res.Reason, "restaurant") {
		t.Errorf("reason %q should name the restaurant category", res.Reason)
	}
}

func TestValidateAmountsWithoutVocabulary(t *testing.T) {
	res := Validate("some scanned page\n 1,234.56\n rs. 99")
	if res.IsMedicalBill {
		t.Fatal("amount-only document accepted as medical")
	}
	if res.Confidence != 30 {
		t.Errorf("confidence = %d, want 30 for amounts without vocabulary", res.Confidence)
	}
}

func TestValidateNotABill(t *testing.T) {
	res := Validate("once upon a time there was a fox")
	if res.IsMedicalBill {
		t.Fatal("plain prose accepted as medical bill")
	}
	if res.Confidence != 10 {
		t.Errorf("confidence = %d, want 10 for non-bill prose", res.Confidence)
	}
}

func TestValidateMixedSignals(t *testing.T) {
	// two medical hits against one non-medical hit: mixed, leans medical
	text := "hospital pharmacy counter near the restaurant entrance"
	res := Validate(text)
	if !res.IsMedicalBill {
		t.Fatalf("mixed document with medical majority rejected: %+v", res)
	}
}
