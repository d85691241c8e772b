package s0_data

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/churnlens/backend/internal/contracts"
)

func ordersTable(rows ...[]string) *contracts.RawTable {
	return &contracts.RawTable{
		Name:    contracts.TableOrders,
		Columns: []string{"order_id", "customer_id", "order_status", "order_purchase_timestamp"},
		Rows:    rows,
	}
}

func paymentsTable(rows ...[]string) *contracts.RawTable {
	return &contracts.RawTable{
		Name:    contracts.TablePayments,
		Columns: []string{"order_id", "payment_sequential", "payment_value"},
		Rows:    rows,
	}
}

func TestCleanOrders_RemovesInvalid(t *testing.T) {
	table := ordersTable(
		[]string{"o1", "c1", "delivered", "2018-01-01 00:00:00"},
		[]string{"o2", "c2", "delivered", "2018-01-02 00:00:00"},
		[]string{"o3", "", "delivered", "2018-01-03 00:00:00"}, // NULL customer_id
		[]string{"o2", "c2", "delivered", "2018-01-02 00:00:00"}, // duplicate order_id
		[]string{"o4", "c4", "canceled", "2018-01-04 00:00:00"}, // status not accepted
	)

	cleaned, stats := CleanOrders(ParseOrders(table), []string{"delivered"})

	require.Len(t, cleaned, 2)
	assert.Equal(t, "o1", cleaned[0].OrderID)
	assert.Equal(t, "o2", cleaned[1].OrderID)
	for _, o := range cleaned {
		assert.Equal(t, "delivered", o.Status)
		assert.NotEmpty(t, o.CustomerID)
	}

	assert.Equal(t, CleanStats{
		Input:            5,
		DroppedNull:      1,
		DroppedDuplicate: 1,
		DroppedStatus:    1,
		Output:           2,
	}, stats)
}

func TestCleanOrders_RowInvalidForSeveralReasonsRemovedOnce(t *testing.T) {
	table := ordersTable(
		[]string{"o1", "c1", "delivered", "2018-01-01"},
		[]string{"o1", "", "canceled", ""}, // duplicate + NULL + bad status
	)

	cleaned, stats := CleanOrders(ParseOrders(table), []string{"delivered"})

	require.Len(t, cleaned, 1)
	assert.Equal(t, 1, stats.DroppedNull)
	assert.Equal(t, 0, stats.DroppedDuplicate)
	assert.Equal(t, 0, stats.DroppedStatus)
	assert.Equal(t, stats.Input, stats.Output+stats.DroppedNull+stats.DroppedDuplicate+stats.DroppedStatus)
}

func TestCleanOrders_DedupBeforeStatusFilter(t *testing.T) {
	// 첫 번째 행이 유지되므로 canceled 로 남고 상태 필터에서 제거된다
	table := ordersTable(
		[]string{"o1", "c1", "canceled", "2018-01-01"},
		[]string{"o1", "c1", "delivered", "2018-01-01"},
	)

	cleaned, _ := CleanOrders(ParseOrders(table), []string{"delivered"})
	assert.Empty(t, cleaned)
}

func TestCleanOrders_UnparseableTimestampIsNull(t *testing.T) {
	table := ordersTable(
		[]string{"o1", "c1", "delivered", "yesterday"},
		[]string{"o2", "c2", "delivered", "2018-01-02T10:00:00Z"},
	)

	cleaned, stats := CleanOrders(ParseOrders(table), []string{"delivered"})
	require.Len(t, cleaned, 1)
	assert.Equal(t, "o2", cleaned[0].OrderID)
	assert.Equal(t, 1, stats.DroppedNull)
}

func TestCleanOrders_DoesNotMutateInput(t *testing.T) {
	orders := ParseOrders(ordersTable(
		[]string{"o1", "c1", "delivered", "2018-01-01"},
		[]string{"o2", "c2", "shipped", "2018-01-02"},
	))
	before := append([]contracts.Order(nil), orders...)

	_, _ = CleanOrders(orders, []string{"delivered"})
	assert.Equal(t, before, orders)
}

func TestCleanPayments_NoNegativeMonetary(t *testing.T) {
	table := paymentsTable(
		[]string{"o1", "1", "100.0"},
		[]string{"o2", "1", "-50.0"},
		[]string{"o3", "1", "200.0"},
		[]string{"o4", "1", "0.0"},
	)

	cleaned, stats := CleanPayments(ParsePayments(table))

	require.Len(t, cleaned, 3)
	for _, p := range cleaned {
		assert.GreaterOrEqual(t, p.Value, 0.0)
		assert.NotEqual(t, "o2", p.OrderID)
	}
	assert.Equal(t, 1, stats.DroppedNegative)
}

func TestCleanPayments_CoercionSkip(t *testing.T) {
	table := paymentsTable(
		[]string{"o1", "1", "12.5"},
		[]string{"o2", "1", "abc"},
		[]string{"o3", "1", "NaN"},
		[]string{"o4", "1", ""},
		[]string{"", "1", "10"},
		[]string{"o5", "1", " 7 "},
	)

	cleaned, stats := CleanPayments(ParsePayments(table))

	require.Len(t, cleaned, 2)
	assert.Equal(t, "o1", cleaned[0].OrderID)
	assert.Equal(t, 7.0, cleaned[1].Value)
	assert.Equal(t, 2, stats.DroppedNonNumeric)
	assert.Equal(t, 2, stats.DroppedNull)
}

func TestAggregatePaymentsByOrder_SumsCorrectly(t *testing.T) {
	payments := []contracts.Payment{
		{OrderID: "o1", Value: 50},
		{OrderID: "o1", Value: 50},
		{OrderID: "o2", Value: 100},
		{OrderID: "o3", Value: 200},
	}

	totals := AggregatePaymentsByOrder(payments)

	assert.Equal(t, []contracts.OrderPayment{
		{OrderID: "o1", Value: 100},
		{OrderID: "o2", Value: 100},
		{OrderID: "o3", Value: 200},
	}, totals)
}

func TestValidateDatasets(t *testing.T) {
	customers := &contracts.RawTable{
		Columns: []string{"customer_id", "customer_unique_id"},
		Rows:    [][]string{{"c1", "u1"}},
	}
	orders := ordersTable([]string{"o1", "c1", "delivered", "2018-01-01"})
	payments := paymentsTable([]string{"o1", "1", "10"})

	t.Run("valid", func(t *testing.T) {
		err := ValidateDatasets(&contracts.Dataset{Customers: customers, Orders: orders, Payments: payments})
		assert.NoError(t, err)
	})

	t.Run("empty orders", func(t *testing.T) {
		err := ValidateDatasets(&contracts.Dataset{Customers: customers, Orders: ordersTable(), Payments: payments})
		require.Error(t, err)
		assert.True(t, errors.Is(err, contracts.ErrEmptyInput))
		assert.Contains(t, err.Error(), "orders")
	})

	t.Run("missing column", func(t *testing.T) {
		badPayments := &contracts.RawTable{
			Columns: []string{"order_id", "payment_type"},
			Rows:    [][]string{{"o1", "voucher"}},
		}
		err := ValidateDatasets(&contracts.Dataset{Customers: customers, Orders: orders, Payments: badPayments})
		require.Error(t, err)

		var se *contracts.SchemaError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, contracts.TablePayments, se.Table)
		assert.Equal(t, []string{"payment_value"}, se.Missing)
	})

	t.Run("nil dataset", func(t *testing.T) {
		assert.Error(t, ValidateDatasets(nil))
	})
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		input string
		ok    bool
	}{
		{"2017-10-02 10:56:33", true},
		{"2017-10-02T10:56:33Z", true},
		{"2017-10-02", true},
		{"02/10/2017", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, ok := ParseTimestamp(tt.input)
			assert.Equal(t, tt.ok, ok)
		})
	}
}
