package csvimport

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "transfer_date,amount,payer_name,payer_name_kana,bank_name,branch_name,guardian_no\n"

func TestParse(t *testing.T) {
	input := header +
		"2026-04-25,30000,ヤマダ タロウ,ヤマダタロウ,みずほ銀行,渋谷支店,1001\n" +
		"2026/04/25,\"18,000\",スズキ イチロウ,,三井住友銀行,,\n"

	rows, rowErrs, err := Parse(strings.NewReader(input))

	require.NoError(t, err)
	require.Empty(t, rowErrs)
	require.Len(t, rows, 2)

	first := rows[0]
	assert.Equal(t, time.Date(2026, 4, 25, 0, 0, 0, 0, time.UTC), first.TransferDate)
	assert.True(t, first.Amount.Equal(decimal.NewFromInt(30000)))
	assert.Equal(t, "ヤマダ タロウ", first.PayerName)
	assert.Equal(t, "ヤマダタロウ", first.PayerNameKana)
	assert.Equal(t, "みずほ銀行", first.SourceBankName)
	assert.Equal(t, "渋谷支店", first.SourceBranchName)
	assert.Equal(t, "1001", first.GuardianNoHint)

	second := rows[1]
	assert.Equal(t, time.Date(2026, 4, 25, 0, 0, 0, 0, time.UTC), second.TransferDate)
	assert.True(t, second.Amount.Equal(decimal.NewFromInt(18000)), "thousands separators are accepted")
	assert.Equal(t, "スズキ イチロウ", second.PayerName)
	assert.Empty(t, second.GuardianNoHint)
}

func TestParse_DateFormats(t *testing.T) {
	for _, raw := range []string{"2026-04-25", "2026/04/25", "20260425", "２０２６－０４－２５"} {
		t.Run(raw, func(t *testing.T) {
			input := header + raw + ",1000,Yamada Taro,,,,\n"
			rows, rowErrs, err := Parse(strings.NewReader(input))
			require.NoError(t, err)
			require.Empty(t, rowErrs)
			require.Len(t, rows, 1)
			assert.Equal(t, time.Date(2026, 4, 25, 0, 0, 0, 0, time.UTC), rows[0].TransferDate)
		})
	}
}

func TestParse_FullwidthAmount(t *testing.T) {
	input := header + "2026-04-25,３００００,Yamada Taro,,,,\n"

	rows, rowErrs, err := Parse(strings.NewReader(input))

	require.NoError(t, err)
	require.Empty(t, rowErrs)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Amount.Equal(decimal.NewFromInt(30000)))
}

func TestParse_LeadingCodeSplitFromPayerName(t *testing.T) {
	tests := []struct {
		name      string
		payerName string
		wantName  string
		wantHint  string
	}{
		{"space separated", "1234 ヤマダタロウ", "ヤマダタロウ", "1234"},
		{"hyphen separated", "1234-ヤマダタロウ", "ヤマダタロウ", "1234"},
		{"fullwidth digits", "１２３４ ヤマダタロウ", "ヤマダタロウ", "1234"},
		{"no code", "ヤマダタロウ", "ヤマダタロウ", ""},
		{"code too short", "12 ヤマダタロウ", "12 ヤマダタロウ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := header + "2026-04-25,1000," + tt.payerName + ",,,,\n"
			rows, rowErrs, err := Parse(strings.NewReader(input))
			require.NoError(t, err)
			require.Empty(t, rowErrs)
			require.Len(t, rows, 1)
			assert.Equal(t, tt.wantName, rows[0].PayerName)
			assert.Equal(t, tt.wantHint, rows[0].GuardianNoHint)
		})
	}
}

func TestParse_ExplicitGuardianNoWinsOverName(t *testing.T) {
	input := header + "2026-04-25,1000,1234 ヤマダタロウ,,,,5678\n"

	rows, rowErrs, err := Parse(strings.NewReader(input))

	require.NoError(t, err)
	require.Empty(t, rowErrs)
	require.Len(t, rows, 1)
	assert.Equal(t, "5678", rows[0].GuardianNoHint)
	assert.Equal(t, "ヤマダタロウ", rows[0].PayerName)
}

func TestParse_BadRowsReportedWithRowNumbers(t *testing.T) {
	input := header +
		"2026-04-25,30000,Yamada Taro,,,,\n" +
		"not-a-date,1000,Suzuki Ichiro,,,,\n" +
		"2026-04-25,abc,Tanaka Jiro,,,,\n" +
		"2026-04-25,-500,Sato Saburo,,,,\n"

	rows, rowErrs, err := Parse(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Len(t, rowErrs, 3)
	assert.Equal(t, 2, rowErrs[0].Row)
	assert.Contains(t, rowErrs[0].Err.Error(), "transfer_date")
	assert.Equal(t, 3, rowErrs[1].Row)
	assert.Contains(t, rowErrs[1].Err.Error(), "amount")
	assert.Equal(t, 4, rowErrs[2].Row)
	assert.Contains(t, rowErrs[2].Err.Error(), "positive")
}

func TestParse_MalformedCSVIsAFileError(t *testing.T) {
	_, _, err := Parse(strings.NewReader(header + "2026-04-25,1000\n"))

	assert.Error(t, err)
}
