package s0_data

import (
	"github.com/wonny/churnlens/backend/internal/contracts"
)

// ParseCustomers projects the raw customers table onto (customer_id, customer_unique_id).
// NULL cells become empty strings; the joiner drops them.
func ParseCustomers(table *contracts.RawTable) []contracts.CustomerMapping {
	idCol := table.ColumnIndex(contracts.ColCustomerID)
	uniqueCol := table.ColumnIndex(contracts.ColCustomerUniqueID)

	mappings := make([]contracts.CustomerMapping, 0, table.Len())
	for _, row := range table.Rows {
		id, _ := table.Cell(row, idCol)
		unique, _ := table.Cell(row, uniqueCol)
		mappings = append(mappings, contracts.CustomerMapping{
			CustomerID:       id,
			CustomerUniqueID: unique,
		})
	}

	return mappings
}
