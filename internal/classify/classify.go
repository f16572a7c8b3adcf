// Package classify maps remote folder and file names onto document
// categories and human-readable display names. Everything here is pure:
// the same inputs always produce the same outputs.
package classify

import (
	"fmt"
	"regexp"
	"strings"
)

// Category is the document kind a file resolves to.
type Category string

const (
	CategoryContract Category = "contract"
	CategoryAct      Category = "act"
	CategoryInvoice  Category = "invoice"
	CategoryOther    Category = "other"
)

// LocalDir returns the scratch subdirectory files of this category land in.
func (c Category) LocalDir() string {
	switch c {
	case CategoryContract:
		return "contracts"
	case CategoryAct:
		return "acts"
	case CategoryInvoice:
		return "invoices"
	default:
		return "others"
	}
}

// CategoryDirs lists every scratch subdirectory.
func CategoryDirs() []string {
	return []string{"contracts", "acts", "invoices", "others"}
}

// Categorize resolves a file to exactly one category. The folder name is
// the stronger signal since the remote tree groups files by document type;
// the file name is only consulted when the folder says nothing.
func Categorize(fileName, folderName string) Category {
	lowerFile := strings.ToLower(fileName)
	lowerFolder := strings.ToLower(folderName)

	switch {
	case strings.Contains(lowerFolder, "akt") || strings.Contains(lowerFolder, "акт"):
		return CategoryAct
	case strings.Contains(lowerFolder, "dogovor") || strings.Contains(lowerFolder, "договор") || strings.Contains(lowerFolder, "dopsoglashenie"):
		return CategoryContract
	case strings.Contains(lowerFolder, "schet") || strings.Contains(lowerFolder, "счет") || strings.Contains(lowerFolder, "счёт"):
		return CategoryInvoice
	}

	switch {
	case strings.Contains(lowerFile, "договор") || strings.Contains(lowerFile, "contract") || strings.Contains(lowerFile, "dopsoglashenie"):
		return CategoryContract
	case strings.Contains(lowerFile, "акт") || strings.Contains(lowerFile, "act") || strings.Contains(lowerFile, "akt"):
		return CategoryAct
	case strings.Contains(lowerFile, "счет") || strings.Contains(lowerFile, "invoice") || strings.Contains(lowerFile, "счёт") || strings.Contains(lowerFile, "schet"):
		return CategoryInvoice
	}

	return CategoryOther
}

// Known type-folder tokens and their display labels.
var displayNames = map[string]string{
	"akt_priema_peredachi_lizinga":  "АПП лизинга",
	"akt_priema_peredachi_postavki": "АПП поставки",
	"akt_vypolnenyh_rabot":          "Акт работ",
	"akt":                           "№ Договора",
	"akt_sverki":                    "Акт сверки",
	"dogovor_lizinga":               "Договор лизинга",
	"dogovor_poruchitelstva":        "Договор поручительства",
	"dogovor_postavki":              "Договор поставки",
	"dogovor_zaloga":                "Договор залога",
	"dogovor_kupli_prodazhi":        "Договор купли-продажи",
	"strahovoy_polis":               "Полис",
	"schet_faktura":                 "Счёт фактура",
	"schet_na_oplatu":               "Счёт на оплату",
}

var (
	dopsoglasheniePattern = regexp.MustCompile(`dopsoglashenie_(\d+)`)
	schetPattern          = regexp.MustCompile(`schet_(\d+)`)
)

// DisplayName picks the label shown in the portal for a document. Exact
// folder tokens win, then numbered folder variants, then the same numbered
// patterns in the file name, then the ПТС/ПСМ rule, and finally the raw
// folder name. Acts are special-cased by the orchestrator to display the
// contract number instead of this function's result.
func DisplayName(folderName, fileName string) string {
	lowerFolder := strings.ToLower(folderName)
	lowerFile := strings.ToLower(fileName)

	if name, ok := displayNames[lowerFolder]; ok {
		return name
	}

	if m := dopsoglasheniePattern.FindStringSubmatch(lowerFolder); m != nil {
		return fmt.Sprintf("Доп. соглашение %s", m[1])
	}
	if m := schetPattern.FindStringSubmatch(lowerFolder); m != nil {
		return fmt.Sprintf("Счёт %s", m[1])
	}

	if m := dopsoglasheniePattern.FindStringSubmatch(lowerFile); m != nil {
		return fmt.Sprintf("Доп. соглашение %s", m[1])
	}
	if m := schetPattern.FindStringSubmatch(lowerFile); m != nil {
		return fmt.Sprintf("Счёт %s", m[1])
	}

	if strings.Contains(lowerFile, "pts") || strings.Contains(lowerFile, "psm") {
		return "ПТС/ПСМ"
	}

	return folderName
}
