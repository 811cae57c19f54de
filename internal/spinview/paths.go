package spinview

import (
	"strconv"
	"strings"
)

// Collection base paths.
const (
	SpinsPath      = "/api/cases/spins/"
	BonusSpinsPath = "/api/cases/bonus-spins/"
)

// IsBonusCollection reports whether basePath names the bonus-spins collection.
func IsBonusCollection(basePath string) bool {
	return strings.Contains(basePath, "bonus-spins")
}

// DetailPath returns the detail URL path of a spin. Bonus sub-spins always
// live under BonusSpinsPath.
func DetailPath(basePath string, id int64) string {
	if IsBonusCollection(basePath) {
		return BonusSpinsPath + strconv.FormatInt(id, 10) + "/"
	}
	return basePath + strconv.FormatInt(id, 10) + "/"
}

// VerifyPath returns the verification URL path of a spin.
func VerifyPath(basePath string, id int64) string {
	return basePath + strconv.FormatInt(id, 10) + "/verify/"
}
