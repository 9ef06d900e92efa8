package collector

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/newthinker/ddm/internal/core"
)

// validSymbol matches tickers like KO, BRK-B, 0700.HK, RY.TO
var validSymbol = regexp.MustCompile(`^[A-Za-z0-9]{1,10}([.-][A-Za-z0-9]{1,4})?$`)

// NormalizeSymbol validates symbol and returns it upper cased
func NormalizeSymbol(symbol string) (string, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return "", core.WrapError(core.ErrSymbolNotFound, fmt.Errorf("symbol cannot be empty"))
	}
	if len(symbol) > 20 || !validSymbol.MatchString(symbol) {
		return "", core.WrapError(core.ErrSymbolNotFound, fmt.Errorf("invalid symbol format: %s", symbol))
	}
	return strings.ToUpper(symbol), nil
}
