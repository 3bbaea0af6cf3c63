package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recipients.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestValidatePlan(t *testing.T) {
	f := planFlags{mode: "single-nft", tokenID: "3", amount: "2", balance: "10", maxRecipients: 100}

	res, err := f.validatePlan(writeCSV(t, "0x1111111111111111111111111111111111111111\n0x2222222222222222222222222222222222222222\n"))
	if err != nil {
		t.Fatal(err)
	}
	if !res.Valid || len(res.Recipients) != 2 {
		t.Fatalf("expected 2 valid recipients, got %+v", res)
	}
	if res.Amounts[0] != "2" || res.TokenIDs[1] != "3" {
		t.Errorf("unexpected columns: %v %v", res.TokenIDs, res.Amounts)
	}

	res, err = f.validatePlan(writeCSV(t, "0x1111111111111111111111111111111111111111\n0x123\n"))
	if err != nil {
		t.Fatal(err)
	}
	if res.Valid {
		t.Fatal("expected invalid list")
	}
	msgs := res.Messages()
	if len(msgs) != 1 || msgs[0] != "Line 2: Invalid address format: 0x123" {
		t.Errorf("messages = %v", msgs)
	}

	if _, err := f.validatePlan(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("expected read error for missing file")
	}
}

func TestSniff(t *testing.T) {
	supported := []string{"image/png", "image/jpeg"}

	png := sniff("a.png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A}, supported)
	if png.Detected != "image/png" || !png.Supported || png.Size != 6 {
		t.Errorf("png = %+v", png)
	}

	bmp := sniff("b.bmp", []byte{0x42, 0x4D, 0x00, 0x00}, supported)
	if bmp.Detected != "image/bmp" || bmp.Supported {
		t.Errorf("bmp = %+v", bmp)
	}

	txt := sniff("c.txt", []byte("hello"), supported)
	if txt.Detected != "unknown" || txt.Supported {
		t.Errorf("txt = %+v", txt)
	}
}
