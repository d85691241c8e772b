package s0_data

import (
	"github.com/wonny/churnlens/backend/internal/contracts"
)

// ValidateSchema checks that a raw table carries every required column
func ValidateSchema(table *contracts.RawTable, name string) error {
	if table == nil {
		return &contracts.SchemaError{Table: name, Missing: contracts.RequiredColumns(name)}
	}

	if missing := table.MissingColumns(contracts.RequiredColumns(name)); len(missing) > 0 {
		return &contracts.SchemaError{Table: name, Missing: missing}
	}
	return nil
}

// ValidateDatasets checks that all three tables are non-empty and well-formed
// ⭐ SSOT: 변환 전 입력 검증은 여기서만
func ValidateDatasets(ds *contracts.Dataset) error {
	if ds == nil {
		return &contracts.EmptyInputError{Table: contracts.TableCustomers}
	}

	tables := []struct {
		name  string
		table *contracts.RawTable
	}{
		{contracts.TableCustomers, ds.Customers},
		{contracts.TableOrders, ds.Orders},
		{contracts.TablePayments, ds.Payments},
	}

	// 빈 테이블 먼저, 스키마는 그 다음
	for _, t := range tables {
		if t.table.Len() == 0 {
			return &contracts.EmptyInputError{Table: t.name, Stage: contracts.StageClean}
		}
	}

	for _, t := range tables {
		if err := ValidateSchema(t.table, t.name); err != nil {
			return err
		}
	}

	return nil
}
