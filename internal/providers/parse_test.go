package providers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestSecID(t *testing.T) {
	assert.Equal(t, "1.600519", secID("600519"))
	assert.Equal(t, "0.000858", secID("000858"))
	assert.Equal(t, "0.300750", secID("300750"))
	assert.Equal(t, "1.000300", secID("sh.000300"))
	assert.Equal(t, "0.399001", secID("sz.399001"))
}

func TestKlineQueryAnchorsEndDate(t *testing.T) {
	// a historical request must pin the window end, otherwise the
	// upstream serves the latest bars and an old as-of date sees no data
	asOf := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	url := klineQuery("1.600519", 300, asOf)
	assert.Contains(t, url, "end=20240315")
	assert.Contains(t, url, "lmt=300")
	assert.Contains(t, url, "secid=1.600519")
}

func TestParseKlines(t *testing.T) {
	body := []byte(`{"data":{"klines":[
		"2025-08-20,100.0,101.5,102.0,99.5,123456,7890123",
		"2025-08-21,101.5,100.0,101.8,99.9,110000,6500000",
		"bad,row",
		"2025-08-22,not,a,number,row,1,2"
	]}}`)
	series := parseKlines(body)
	require.Len(t, series, 2)
	assert.Equal(t, 101.5, series[0].Close)
	assert.Equal(t, 100.0, series[0].Open)
	assert.Equal(t, 102.0, series[0].High)
	assert.Equal(t, 99.5, series[0].Low)
	assert.Equal(t, 123456.0, series[0].Volume)
	assert.Equal(t, 21, series[1].Date.Day())
}

func TestParseKlinesEmpty(t *testing.T) {
	assert.Empty(t, parseKlines([]byte(`{"data":null}`)))
	assert.Empty(t, parseKlines([]byte(`{}`)))
}

func TestFloatField(t *testing.T) {
	row := gjson.Parse(`{"PE_TTM":25.5,"PB_MRQ":"8.1","PS_TTM":null,"BAD":"n/a"}`)
	pe := floatField(row, "PE_TTM")
	require.NotNil(t, pe)
	assert.Equal(t, 25.5, *pe)

	pb := floatField(row, "PB_MRQ")
	require.NotNil(t, pb)
	assert.Equal(t, 8.1, *pb)

	assert.Nil(t, floatField(row, "PS_TTM"))
	assert.Nil(t, floatField(row, "BAD"))
	assert.Nil(t, floatField(row, "MISSING"))
}

func TestParseValuationRows(t *testing.T) {
	body := []byte(`{"result":{"data":[
		{"TRADE_DATE":"2025-08-22 00:00:00","PE_TTM":30.1,"PB_MRQ":9.2,"PS_TTM":10.4},
		{"TRADE_DATE":"2025-08-21 00:00:00","PE_TTM":null,"PB_MRQ":"bad","PS_TTM":10.1}
	]}}`)
	rows := parseValuationRows(body)
	require.Len(t, rows, 2)
	require.NotNil(t, rows[0].PE)
	assert.Equal(t, 30.1, *rows[0].PE)
	assert.Equal(t, 22, rows[0].Date.Day())
	assert.Nil(t, rows[1].PE)
	assert.Nil(t, rows[1].PB)
	require.NotNil(t, rows[1].PS)
}

func TestFallbackPeersHaveValidCodes(t *testing.T) {
	for industry, codes := range fallbackPeers {
		assert.NotEmpty(t, codes, industry)
		for _, code := range codes {
			assert.Len(t, code, 6, "%s peer %s", industry, code)
		}
	}
}
