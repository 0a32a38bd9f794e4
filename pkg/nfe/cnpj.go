package nfe

import (
	"fmt"
	"unicode"
)

// pesos del cálculo de los dígitos verificadores del CNPJ (módulo 11, Receita Federal).
var (
	cnpjWeights1 = [12]int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjWeights2 = [13]int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// OnlyDigits deja solo dígitos 0-9 ("41.492.247/0001-50" -> "41492247000150").
func OnlyDigits(s string) string {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			out = append(out, byte(r))
		}
	}
	return string(out)
}

// ValidateCNPJ valida los dos dígitos verificadores de un CNPJ (con o sin máscara).
func ValidateCNPJ(taxID string) error {
	digits := OnlyDigits(taxID)
	if len(digits) != 14 {
		return fmt.Errorf("nfe: CNPJ debe tener 14 dígitos, se encontraron %d", len(digits))
	}
	if allEqual(digits) {
		return fmt.Errorf("nfe: CNPJ %s inválido (dígitos repetidos)", digits)
	}
	d1 := checkDigit(digits[:12], cnpjWeights1[:])
	d2 := checkDigit(digits[:12]+string(d1), cnpjWeights2[:])
	if digits[12] != d1 || digits[13] != d2 {
		return fmt.Errorf("nfe: dígitos verificadores del CNPJ inválidos: esperado %c%c, recibido %s", d1, d2, digits[12:])
	}
	return nil
}

// ValidateCPF valida los dígitos verificadores de un CPF (persona física).
func ValidateCPF(taxID string) error {
	digits := OnlyDigits(taxID)
	if len(digits) != 11 {
		return fmt.Errorf("nfe: CPF debe tener 11 dígitos, se encontraron %d", len(digits))
	}
	if allEqual(digits) {
		return fmt.Errorf("nfe: CPF %s inválido (dígitos repetidos)", digits)
	}
	w1 := []int{10, 9, 8, 7, 6, 5, 4, 3, 2}
	w2 := []int{11, 10, 9, 8, 7, 6, 5, 4, 3, 2}
	d1 := checkDigit(digits[:9], w1)
	d2 := checkDigit(digits[:9]+string(d1), w2)
	if digits[9] != d1 || digits[10] != d2 {
		return fmt.Errorf("nfe: dígitos verificadores del CPF inválidos: esperado %c%c, recibido %s", d1, d2, digits[9:])
	}
	return nil
}

// ValidateTaxID valida CNPJ (14 dígitos) o CPF (11 dígitos).
func ValidateTaxID(taxID string) error {
	if len(OnlyDigits(taxID)) == 11 {
		return ValidateCPF(taxID)
	}
	return ValidateCNPJ(taxID)
}

// FormatCNPJ aplica la máscara 99.999.999/9999-99; devuelve la entrada si no tiene 14 dígitos.
func FormatCNPJ(taxID string) string {
	d := OnlyDigits(taxID)
	if len(d) != 14 {
		return taxID
	}
	return d[:2] + "." + d[2:5] + "." + d[5:8] + "/" + d[8:12] + "-" + d[12:]
}

func checkDigit(base string, weights []int) byte {
	var sum int
	for i, r := range base {
		sum += int(r-'0') * weights[i]
	}
	remainder := sum % 11
	if remainder < 2 {
		return '0'
	}
	return byte('0' + (11 - remainder))
}

func allEqual(digits string) bool {
	for _, r := range digits {
		if !unicode.IsDigit(r) || byte(r) != digits[0] {
			return false
		}
	}
	return true
}
