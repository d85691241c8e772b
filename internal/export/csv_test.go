package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/churnlens/backend/internal/contracts"
)

func sampleFeature() contracts.CustomerFeature {
	return contracts.CustomerFeature{
		CustomerUniqueID: "u1",
		Frequency:        2,
		Monetary:         150.5,
		FirstPurchase:    time.Date(2017, 3, 1, 10, 0, 0, 0, time.UTC),
		LastPurchase:     time.Date(2018, 2, 1, 8, 30, 15, 0, time.UTC),
		RecencyDays:      300,
		TenureDays:       637,
		AvgTicket:        75.25,
		Churn:            1,
		RScore:           1,
		FScore:           5,
		MScore:           4,
		RFMScore:         10,
		RFMSegment:       "1-5-4",
		RiskSegment:      contracts.RiskChurnPrioritized,
	}
}

func TestWriteFeatures(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFeatures(&buf, []contracts.CustomerFeature{sampleFeature()}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, FeatureColumns, records[0])
	assert.Equal(t, []string{
		"u1", "2", "150.5", "2017-03-01 10:00:00", "2018-02-01 08:30:15",
		"300", "637", "75.25", "1", "1", "5", "4", "10", "1-5-4", "Churn (prioritized)",
	}, records[1])
}

func TestWriteFeatures_Deterministic(t *testing.T) {
	rows := []contracts.CustomerFeature{sampleFeature(), sampleFeature()}
	rows[1].CustomerUniqueID = "u2"
	rows[1].Monetary = 0.1 + 0.2

	var a, b bytes.Buffer
	require.NoError(t, WriteFeatures(&a, rows))
	require.NoError(t, WriteFeatures(&b, rows))
	assert.Equal(t, a.Bytes(), b.Bytes())
	assert.Contains(t, a.String(), "0.30000000000000004")
}

func TestWriteTopRisk(t *testing.T) {
	var buf bytes.Buffer
	err := WriteTopRisk(&buf, []contracts.TopRiskCustomer{{
		CustomerUniqueID: "u9",
		Churn:            1,
		RiskSegment:      contracts.RiskVeryHigh,
		RecencyDays:      600,
		Frequency:        1,
		Monetary:         12,
		AvgTicket:        12,
		RScore:           1,
		FScore:           1,
		MScore:           1,
		RFMScore:         3,
	}})
	require.NoError(t, err)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, TopRiskColumns, records[0])
	assert.Equal(t, []string{"u9", "1", "Very high risk", "600", "1", "12", "12", "1", "1", "1", "3"}, records[1])
}

func TestWriteFeatures_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFeatures(&buf, nil))
	assert.Equal(t, "customer_unique_id,frequency,monetary,first_purchase,last_purchase,recency_days,tenure_days,avg_ticket,churn,R_score,F_score,M_score,RFM_score,RFM_segment,risk_segment\n", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteFeatures_WriterError(t *testing.T) {
	err := WriteFeatures(failingWriter{}, []contracts.CustomerFeature{sampleFeature()})
	assert.Error(t, err)
}
