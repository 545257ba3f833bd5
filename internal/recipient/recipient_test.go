package recipient

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/blues/nftsender/internal/model"
	"github.com/xuri/excelize/v2"
)

const (
	evmAddress    = "0x1111111111111111111111111111111111111111"
	solanaAddress = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
)

func TestParse_EmailAndWallet(t *testing.T) {
	res, err := Parse("alice@example.com, " + evmAddress)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	want := []string{"alice@example.com", evmAddress}
	if !reflect.DeepEqual(res.Recipients, want) {
		t.Errorf("Parse() = %v; want %v", res.Recipients, want)
	}
	if res.Count != 2 {
		t.Errorf("Count = %d; want 2", res.Count)
	}
}

func TestParse_DropsInvalidKeepsDuplicates(t *testing.T) {
	res, err := Parse("bob@x.io\n\nnot-an-email,,short  bob@x.io\tkeep@y.org")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	want := []string{"bob@x.io", "bob@x.io", "keep@y.org"}
	if !reflect.DeepEqual(res.Recipients, want) {
		t.Errorf("Parse() = %v; want %v", res.Recipients, want)
	}
	for _, r := range res.Recipients {
		if !IsValid(r) {
			t.Errorf("emitted invalid token %q", r)
		}
	}
}

func TestParse_NoValidRecipients(t *testing.T) {
	for _, in := range []string{"", "   ", "foo, bar@baz", "a.b"} {
		if _, err := Parse(in); !errors.Is(err, ErrNoValidRecipients) {
			t.Errorf("Parse(%q) error = %v; want ErrNoValidRecipients", in, err)
		}
	}
}

func TestClassify(t *testing.T) {
	cases := map[string]Kind{
		"alice@example.com":          KindEmail,
		evmAddress:                   KindEVM,
		solanaAddress:                KindSolana,
		"polygon-amoy:" + evmAddress: KindUnknown,
		"0x123":                      KindUnknown,
	}
	for in, want := range cases {
		if got := Classify(in); got != want {
			t.Errorf("Classify(%q) = %s; want %s", in, got, want)
		}
	}
}

func TestFormatForProvider(t *testing.T) {
	cases := []struct {
		recipient string
		chain     model.Blockchain
		want      string
	}{
		{"alice@example.com", model.BlockchainPolygonAmoy, "email:alice@example.com:polygon-amoy"},
		{evmAddress, model.BlockchainChiliz, "chiliz:" + evmAddress},
		{solanaAddress, model.BlockchainSolana, "solana:" + solanaAddress},
		{"polygon-amoy:" + evmAddress, model.BlockchainChiliz, "polygon-amoy:" + evmAddress},
		{"alice@example.com", "", "email:alice@example.com:chiliz"},
	}
	for _, c := range cases {
		if got := FormatForProvider(c.recipient, c.chain); got != c.want {
			t.Errorf("FormatForProvider(%q, %s) = %s; want %s", c.recipient, c.chain, got, c.want)
		}
	}
}

func TestParseSheet_CSV(t *testing.T) {
	csv := "recipient,name\nalice@example.com,Alice\n,\n ," + evmAddress + "\nnope,x\n"
	res, err := ParseSheet("list.csv", strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ParseSheet() error: %v", err)
	}
	want := []string{"alice@example.com", evmAddress}
	if !reflect.DeepEqual(res.Recipients, want) {
		t.Errorf("ParseSheet() = %v; want %v", res.Recipients, want)
	}
}

func TestParseSheet_Excel(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	rows := []string{"email", "carol@example.com", "dave@example.com", "bad"}
	for i, v := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			t.Fatalf("SetCellValue() error: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer() error: %v", err)
	}

	res, err := ParseSheet("Recipients.XLSX", buf)
	if err != nil {
		t.Fatalf("ParseSheet() error: %v", err)
	}
	want := []string{"carol@example.com", "dave@example.com"}
	if !reflect.DeepEqual(res.Recipients, want) {
		t.Errorf("ParseSheet() = %v; want %v", res.Recipients, want)
	}
}

func TestParseSheet_Errors(t *testing.T) {
	if _, err := ParseSheet("list.pdf", strings.NewReader("x")); !errors.Is(err, ErrUnsupportedFile) {
		t.Errorf("ParseSheet(pdf) error = %v; want ErrUnsupportedFile", err)
	}
	if _, err := ParseSheet("list.xlsx", strings.NewReader("not a zip")); err == nil {
		t.Error("ParseSheet(corrupt xlsx) error = nil; want error")
	}
	if _, err := ParseSheet("list.csv", strings.NewReader("header\n")); !errors.Is(err, ErrNoValidRecipients) {
		t.Errorf("ParseSheet(header only) error = %v; want ErrNoValidRecipients", err)
	}
}
