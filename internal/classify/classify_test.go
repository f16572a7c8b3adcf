package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategorizeFolderNameWins(t *testing.T) {
	assert.Equal(t, CategoryContract, Categorize("dogovor_123.pdf", "dogovor_lizinga"))
	assert.Equal(t, CategoryAct, Categorize("file.pdf", "akt"))
	assert.Equal(t, CategoryAct, Categorize("dogovor.pdf", "akt_priema_peredachi_lizinga"))
	assert.Equal(t, CategoryContract, Categorize("whatever.pdf", "dopsoglashenie_2"))
	assert.Equal(t, CategoryInvoice, Categorize("x.pdf", "schet_na_oplatu"))
}

func TestCategorizeFileNameFallback(t *testing.T) {
	assert.Equal(t, CategoryInvoice, Categorize("schet_5.pdf", ""))
	assert.Equal(t, CategoryContract, Categorize("contract_42.pdf", ""))
	assert.Equal(t, CategoryAct, Categorize("akt_priemki.pdf", ""))
	assert.Equal(t, CategoryOther, Categorize("random.pdf", ""))
}

func TestCategorizeCyrillicKeywords(t *testing.T) {
	assert.Equal(t, CategoryAct, Categorize("x.pdf", "Акт сверки"))
	assert.Equal(t, CategoryContract, Categorize("Договор аренды.pdf", ""))
	assert.Equal(t, CategoryInvoice, Categorize("счёт_на_оплату.pdf", ""))
}

func TestCategorizeIsTotalAndDeterministic(t *testing.T) {
	cases := []struct{ file, folder string }{
		{"", ""},
		{"dogovor.pdf", "akt"},
		{"schet.pdf", "dogovor_lizinga"},
		{"a.bin", "unknown_folder"},
		{"ПТС.pdf", ""},
	}
	valid := map[Category]bool{
		CategoryContract: true, CategoryAct: true, CategoryInvoice: true, CategoryOther: true,
	}
	for _, tc := range cases {
		first := Categorize(tc.file, tc.folder)
		assert.True(t, valid[first], "category %q out of range", first)
		for i := 0; i < 3; i++ {
			assert.Equal(t, first, Categorize(tc.file, tc.folder))
		}
	}
}

func TestDisplayNameKnownFolders(t *testing.T) {
	assert.Equal(t, "АПП лизинга", DisplayName("akt_priema_peredachi_lizinga", "x.pdf"))
	assert.Equal(t, "Договор лизинга", DisplayName("dogovor_lizinga", "x.pdf"))
	assert.Equal(t, "Полис", DisplayName("strahovoy_polis", "polis.pdf"))
	assert.Equal(t, "Счёт на оплату", DisplayName("schet_na_oplatu", "x.pdf"))
	assert.Equal(t, "№ Договора", DisplayName("akt", "x.pdf"))
}

func TestDisplayNameNumberedVariants(t *testing.T) {
	assert.Equal(t, "Доп. соглашение 3", DisplayName("dopsoglashenie_3", "anything.pdf"))
	assert.Equal(t, "Счёт 12", DisplayName("schet_12", "x.pdf"))

	// Same patterns in the file name when the folder says nothing.
	assert.Equal(t, "Доп. соглашение 7", DisplayName("misc", "dopsoglashenie_7.pdf"))
	assert.Equal(t, "Счёт 4", DisplayName("misc", "schet_4_scan.pdf"))
}

func TestDisplayNamePTSAndFallback(t *testing.T) {
	assert.Equal(t, "ПТС/ПСМ", DisplayName("misc", "pts_scan.pdf"))
	assert.Equal(t, "ПТС/ПСМ", DisplayName("misc", "PSM-2021.pdf"))
	assert.Equal(t, "some_folder", DisplayName("some_folder", "file.pdf"))
}

func TestCategoryLocalDirs(t *testing.T) {
	assert.Equal(t, "contracts", CategoryContract.LocalDir())
	assert.Equal(t, "acts", CategoryAct.LocalDir())
	assert.Equal(t, "invoices", CategoryInvoice.LocalDir())
	assert.Equal(t, "others", CategoryOther.LocalDir())
	assert.Len(t, CategoryDirs(), 4)
}
