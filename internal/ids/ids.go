package ids

import (
	"fmt"
	"strconv"
)

// League codes used as identifier namespaces
const (
	LeagueNBA        = "NBA"
	LeagueEuroLeague = "EL"
)

// Canonical namespaces a provider identifier with its league code.
// Canonical("NBA", 201939) == "NBA_201939". The raw id is not normalized and
// the league code is not checked against a known set.
func Canonical(league string, raw any) string {
	return league + "_" + rawText(raw)
}

// Player returns the canonical player identifier
func Player(league string, raw any) string {
	return Canonical(league, raw)
}

// Team returns the canonical team identifier
func Team(league string, raw any) string {
	return Canonical(league, raw)
}

// Game returns the canonical game identifier
func Game(league string, raw any) string {
	return Canonical(league, raw)
}

func rawText(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
