package contracts

import "strings"

// Sector is the closed sector category used for valuation and risk dispatch
// ⭐ SSOT: 섹터 판정은 수집 시점에 한 번만 수행
type Sector string

const (
	SectorTechnology Sector = "Technology"
	SectorHealthcare Sector = "Healthcare"
	SectorFinancial  Sector = "Financial"
	SectorEnergy     Sector = "Energy"
	SectorOther      Sector = "Other"
	SectorUnknown    Sector = "Unknown"
)

// sectorKeywords is checked in order; the first substring hit wins
var sectorKeywords = []struct {
	keyword string
	sector  Sector
}{
	{"technology", SectorTechnology},
	{"healthcare", SectorHealthcare},
	{"financial", SectorFinancial},
	{"energy", SectorEnergy},
}

// ResolveSector maps a provider sector name onto the closed category
// (case-insensitive substring match). Blank input is Unknown.
func ResolveSector(raw string) Sector {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "" {
		return SectorUnknown
	}

	for _, kw := range sectorKeywords {
		if strings.Contains(name, kw.keyword) {
			return kw.sector
		}
	}
	return SectorOther
}

// IsGrowth reports whether the sector uses the growth-adjusted valuation
func (s Sector) IsGrowth() bool {
	return s == SectorTechnology || s == SectorHealthcare
}

// IsVolatile reports whether the sector adds a risk point
func (s Sector) IsVolatile() bool {
	return s == SectorTechnology || s == SectorHealthcare || s == SectorEnergy
}

func (s Sector) String() string {
	if s == "" {
		return string(SectorUnknown)
	}
	return string(s)
}
