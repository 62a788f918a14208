package service

import "strings"

// SinaSymbol rewrites a bare instrument code into sina's exchange-qualified
// form: sh600000, sz000001, bj430047.
func SinaSymbol(code string) string {
	switch {
	case strings.HasPrefix(code, "6"), strings.HasPrefix(code, "5"), strings.HasPrefix(code, "9"):
		return "sh" + code
	case strings.HasPrefix(code, "0"), strings.HasPrefix(code, "3"),
		strings.HasPrefix(code, "1"), strings.HasPrefix(code, "2"):
		return "sz" + code
	case strings.HasPrefix(code, "4"), strings.HasPrefix(code, "8"):
		return "bj" + code
	}
	return code
}

// EastmoneySecID builds the market-qualified secid the eastmoney quote and
// kline endpoints expect: market 1 is Shanghai, market 0 is Shenzhen/Beijing.
func EastmoneySecID(code string) string {
	if strings.HasPrefix(code, "6") || strings.HasPrefix(code, "5") || strings.HasPrefix(code, "9") {
		return "1." + code
	}
	return "0." + code
}
