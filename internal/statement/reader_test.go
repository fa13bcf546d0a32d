package statement

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/regulaite/internal/common"
	"github.com/aclindsa/ofxgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>INR
<BANKACCTFROM>
<BANKID>HDFC0001234
<ACCTID>50100012345678
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240105120000[0:GMT]
<TRNAMT>-250000.00
<FITID>2024010501
<NAME>NEFT DR Office rent January
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240112120000[0:GMT]
<TRNAMT>-20000.50
<FITID>2024011201
<NAME>Audit fee
<MEMO>Sharma and Co
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240125120000[0:GMT]
<TRNAMT>50000.00
<FITID>2024012501
<NAME>Invoice 118 sale receipt
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>100000.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

const sampleCreditCardOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>INR
<CCACCTFROM>
<ACCTID>4111111111111111
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240110120000[0:GMT]
<TRNAMT>-4599.00
<FITID>CC2024011001
<NAME>POS PURCHASE Office chairs bought
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-4599.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func TestOFXReaderRead(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		wantCount int
		wantErr   bool
	}{
		{name: "bank statement", data: sampleBankOFX, wantCount: 3},
		{name: "credit card statement", data: sampleCreditCardOFX, wantCount: 1},
		{name: "leading whitespace", data: "\n\n  " + sampleCreditCardOFX, wantCount: 1},
		{name: "invalid data", data: "not valid OFX", wantErr: true},
		{name: "empty", data: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := NewOFXReader(nil).Read(context.Background(), strings.NewReader(tt.data))
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, common.ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Len(t, entries, tt.wantCount)
		})
	}
}

func TestOFXReaderEntries(t *testing.T) {
	entries, err := NewOFXReader(nil).Read(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "2024010501", entries[0].ID)
	assert.Equal(t, "Office rent January", entries[0].Description)
	assert.Equal(t, int64(250000), entries[0].Amount)
	assert.Equal(t, time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC), entries[0].Date.UTC())
	assert.Equal(t, "Office rent January amount 250000", entries[0].Text())

	assert.Equal(t, "Audit fee Sharma and Co", entries[1].Description)
	assert.Equal(t, int64(20000), entries[1].Amount)

	assert.Equal(t, int64(50000), entries[2].Amount, "credits keep their magnitude")
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		tx   ofxgo.Transaction
		want string
	}{
		{name: "name only", tx: ofxgo.Transaction{Name: "Rent March"}, want: "Rent March"},
		{name: "payee preferred", tx: ofxgo.Transaction{Name: "ACH", Payee: &ofxgo.Payee{Name: "Landlord"}}, want: "Landlord"},
		{name: "prefix stripped", tx: ofxgo.Transaction{Name: "UPI/contractor payment"}, want: "contractor payment"},
		{name: "memo appended", tx: ofxgo.Transaction{Name: "Transfer", Memo: "legal fees"}, want: "Transfer legal fees"},
		{name: "duplicate memo ignored", tx: ofxgo.Transaction{Name: "Sale", Memo: "SALE"}, want: "Sale"},
		{name: "memo only", tx: ofxgo.Transaction{Memo: "work order 7"}, want: "work order 7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describe(tt.tx))
		})
	}
}

func TestPreprocessOFX(t *testing.T) {
	in := "\n  <SEVERITY>Info</SEVERITY>\n<CODE\n"
	out := preprocessOFX(in)
	assert.Equal(t, "<SEVERITY>INFO</SEVERITY>\n<CODE>\n", out)
}

func TestTextReader(t *testing.T) {
	input := `# January
Paid rent amount 250000

  Professional consulting fee of 20000
# end`

	entries, err := TextReader{}.Read(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "line-2", entries[0].ID)
	assert.Equal(t, "Paid rent amount 250000", entries[0].Text())
	assert.Equal(t, "line-4", entries[1].ID)
	assert.Equal(t, "Professional consulting fee of 20000", entries[1].Description)
}

func TestNewReader(t *testing.T) {
	for _, format := range []string{"ofx", "QFX"} {
		r, err := NewReader(format, nil)
		require.NoError(t, err)
		assert.IsType(t, &OFXReader{}, r)
	}

	r, err := NewReader("text", nil)
	require.NoError(t, err)
	assert.IsType(t, TextReader{}, r)

	_, err = NewReader("csv", nil)
	assert.ErrorIs(t, err, common.ErrUnsupportedFormat)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()

	ofxPath := filepath.Join(dir, "jan.qfx")
	require.NoError(t, os.WriteFile(ofxPath, []byte(sampleCreditCardOFX), 0o600))
	entries, err := ReadFile(context.Background(), ofxPath, "", nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Office chairs bought", entries[0].Description)

	textPath := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(textPath, []byte("labour charges 45000\n"), 0o600))
	entries, err = ReadFile(context.Background(), textPath, FormatAuto, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	_, err = ReadFile(context.Background(), filepath.Join(dir, "missing.txt"), "", nil)
	require.Error(t, err)

	assert.Equal(t, FormatOFX, DetectFormat("a.OFX"))
	assert.Equal(t, FormatText, DetectFormat("a.csv"))
}
