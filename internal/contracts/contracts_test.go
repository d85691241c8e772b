package contracts

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestStage_ShortName(t *testing.T) {
	for i, stage := range AllStages() {
		want := fmt.Sprintf("S%d", i)
		if got := stage.ShortName(); got != want {
			t.Errorf("%s.ShortName() = %s, want %s", stage, got, want)
		}
		if !IsValidStage(string(stage)) {
			t.Errorf("IsValidStage(%s) = false", stage)
		}
	}

	if IsValidStage("S9_UNKNOWN") {
		t.Error("Expected S9_UNKNOWN to be invalid")
	}
}

func TestRawTable_MissingColumns(t *testing.T) {
	table := &RawTable{
		Name:    TableOrders,
		Columns: []string{"order_id", " customer_id ", "order_status"},
	}

	missing := table.MissingColumns(RequiredColumns(TableOrders))
	if len(missing) != 1 || missing[0] != ColPurchaseTime {
		t.Errorf("MissingColumns() = %v, want [%s]", missing, ColPurchaseTime)
	}

	if idx := table.ColumnIndex(ColCustomerID); idx != 1 {
		t.Errorf("ColumnIndex(customer_id) = %d, want 1 (header is trimmed)", idx)
	}
}

func TestRawTable_Cell(t *testing.T) {
	table := &RawTable{Columns: []string{"a", "b"}}
	row := []string{"  x ", "   "}

	if v, ok := table.Cell(row, 0); !ok || v != "x" {
		t.Errorf("Cell(0) = %q,%v want \"x\",true", v, ok)
	}
	if _, ok := table.Cell(row, 1); ok {
		t.Error("Expected blank cell to be NULL")
	}
	if _, ok := table.Cell(row, 5); ok {
		t.Error("Expected out-of-range cell to be NULL")
	}
}

func TestErrors_Is(t *testing.T) {
	schemaErr := fmt.Errorf("validate: %w", &SchemaError{Table: TablePayments, Missing: []string{ColPaymentValue}})
	if !errors.Is(schemaErr, ErrSchema) {
		t.Error("Expected wrapped SchemaError to match ErrSchema")
	}
	if !IsInputError(schemaErr) {
		t.Error("Expected SchemaError to be an input error")
	}

	var se *SchemaError
	if !errors.As(schemaErr, &se) || se.Table != TablePayments {
		t.Error("Expected errors.As to recover the SchemaError")
	}

	emptyErr := &EmptyInputError{Table: TableOrders}
	if emptyErr.Error() != "orders dataset is empty" {
		t.Errorf("Error() = %q", emptyErr.Error())
	}
	if !errors.Is(emptyErr, ErrEmptyInput) {
		t.Error("Expected EmptyInputError to match ErrEmptyInput")
	}

	if IsInputError(errors.New("connection refused")) {
		t.Error("Expected plain error not to be an input error")
	}
}

func TestRiskSegment_IsValid(t *testing.T) {
	if len(AllRiskSegments()) != 7 {
		t.Fatalf("Expected 7 risk segments, got %d", len(AllRiskSegments()))
	}
	if !RiskChurnPrioritized.IsValid() {
		t.Error("Expected Churn (prioritized) to be valid")
	}
	if RiskSegment("Risco alto").IsValid() {
		t.Error("Expected unknown label to be invalid")
	}
}

func TestFeatureTable_Clone(t *testing.T) {
	original := &FeatureTable{
		AsOfDate: time.Date(2018, 8, 29, 0, 0, 0, 0, time.UTC),
		Rows:     []CustomerFeature{{CustomerUniqueID: "u1", Frequency: 2}},
	}

	clone := original.Clone()
	clone.Rows[0].Frequency = 99

	if original.Rows[0].Frequency != 2 {
		t.Error("Clone() must not alias the original rows")
	}
	if !clone.AsOfDate.Equal(original.AsOfDate) {
		t.Error("Clone() must keep as_of_date")
	}

	var nilTable *FeatureTable
	if nilTable.Clone() != nil || nilTable.Len() != 0 {
		t.Error("nil FeatureTable should clone to nil with Len 0")
	}
}
