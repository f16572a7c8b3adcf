// Package registry loads and queries the shared customer registry
// (customers.xml) exported by the leasing back office.
package registry

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"

	appErrors "github.com/investleasing/leasing-portal-api/pkg/errors"
)

// Registry is the parsed repository-wide customer file. The root element
// name is not checked; only the repeated customer blocks matter.
type Registry struct {
	Customers []CustomerEntry `xml:"ДанныеПоКлиенту"`
}

// CustomerEntry is one customer's block in the registry.
type CustomerEntry struct {
	INN          string          `xml:"ИНН"`
	Email        string          `xml:"Email"`
	FullName     string          `xml:"НаименованиеПолное"`
	KPP          string          `xml:"КПП"`
	OGRN         string          `xml:"ОГРН"`
	LegalAddress string          `xml:"ЮрАдрес"`
	ManagerName  string          `xml:"МенеджерФИО"`
	ManagerEmail string          `xml:"МенеджерEmail"`
	Phone        string          `xml:"Телефон"`
	Contracts    []ContractBlock `xml:"Договоры>Договор"`
}

// ContractBlock is a contract with its ordered payment list.
type ContractBlock struct {
	Number   string         `xml:"Номер"`
	Date     string         `xml:"Дата"`
	Payments []PaymentBlock `xml:"ГрафикПлатежей>Платеж"`
}

// PaymentBlock is one scheduled payment.
type PaymentBlock struct {
	Date   string `xml:"Дата"`
	Amount string `xml:"Сумма"`
}

// Parse decodes registry XML bytes.
func Parse(data []byte) (*Registry, error) {
	reg := &Registry{}
	if err := xml.Unmarshal(data, reg); err != nil {
		return nil, fmt.Errorf("parse customer registry: %w", err)
	}
	return reg, nil
}

// FindCustomer locates the entry for the given identity. A tax id match
// takes precedence over an email match. When both are present but resolve
// to different entries the lookup fails with a conflicting-match error
// instead of silently picking one.
func FindCustomer(reg *Registry, inn, email string) (*CustomerEntry, error) {
	if reg == nil {
		return nil, nil
	}

	var byINN, byEmail *CustomerEntry
	for i := range reg.Customers {
		entry := &reg.Customers[i]
		if byINN == nil && inn != "" && entry.INN == inn {
			byINN = entry
		}
		if byEmail == nil && email != "" && strings.EqualFold(entry.Email, email) {
			byEmail = entry
		}
	}

	if byINN != nil && byEmail != nil && byINN != byEmail {
		return nil, appErrors.Clone(appErrors.ErrConflictingMatch,
			fmt.Sprintf("tax id %s and email %s belong to different registry entries", inn, email))
	}
	if byINN != nil {
		return byINN, nil
	}
	return byEmail, nil
}

// ValidateMatch is the registration-time identity integrity check: it
// rejects an email already bound to a different tax id in the registry,
// and vice versa. An empty message means the pair is acceptable.
func ValidateMatch(reg *Registry, email, inn string) (bool, string) {
	if reg == nil {
		return true, ""
	}

	for i := range reg.Customers {
		entry := &reg.Customers[i]
		if email != "" && strings.EqualFold(entry.Email, email) {
			if entry.INN != "" && entry.INN != inn {
				return false, fmt.Sprintf("Этот email зарегистрирован с ИНН %s. Для регистрации с ИНН %s используйте другой email.", entry.INN, inn)
			}
			return true, ""
		}
	}

	for i := range reg.Customers {
		entry := &reg.Customers[i]
		if inn != "" && entry.INN == inn {
			if entry.Email != "" && !strings.EqualFold(entry.Email, email) {
				return false, fmt.Sprintf("Этот ИНН зарегистрирован с email %s. Для регистрации с email %s используйте другой ИНН.", entry.Email, email)
			}
			return true, ""
		}
	}

	return true, ""
}

// ParseDate reads the date formats the back office export uses. A value
// that parses with none of them yields the fallback.
func ParseDate(raw string, fallback time.Time) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02", "02.01.2006"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return fallback
}

// ParseAmount reads a payment amount, tolerating comma decimal separators.
func ParseAmount(raw string) float64 {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, ",", "."))
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}
