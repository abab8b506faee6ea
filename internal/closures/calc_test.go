package closures

import (
	"math"
	"testing"
)

func TestComputeSplitDefaults(t *testing.T) {
	split := ComputeSplit(100000, DefaultOfficePct, DefaultCaptadorPct, DefaultVendedorPct)
	if split.OfficeAmount != 30000 {
		t.Fatalf("office = %f, want 30000", split.OfficeAmount)
	}
	if split.CaptadorAmount != 35000 {
		t.Fatalf("captador = %f, want 35000", split.CaptadorAmount)
	}
	if split.VendedorAmount != 35000 {
		t.Fatalf("vendedor = %f, want 35000", split.VendedorAmount)
	}
}

func TestComputeSplitDoesNotForceSumToHundred(t *testing.T) {
	split := ComputeSplit(1000, 50, 50, 50)
	total := split.OfficeAmount + split.CaptadorAmount + split.VendedorAmount
	if total != 1500 {
		t.Fatalf("total = %f, want 1500; the split is whatever was entered", total)
	}
}

func TestComputeSplitZeroPrice(t *testing.T) {
	split := ComputeSplit(0, 30, 35, 35)
	if split.OfficeAmount != 0 || split.CaptadorAmount != 0 || split.VendedorAmount != 0 {
		t.Fatalf("zero price must yield zero amounts: %+v", split)
	}
}

func TestComputeSplitFractionalPercentages(t *testing.T) {
	split := ComputeSplit(333333.33, 33.5, 33.25, 33.25)
	if math.Abs(split.OfficeAmount-333333.33*0.335) > 1e-9 {
		t.Fatalf("office = %f", split.OfficeAmount)
	}
	if math.Abs(split.CaptadorAmount-split.VendedorAmount) > 1e-9 {
		t.Fatalf("equal percentages must produce equal amounts: %+v", split)
	}
}
