package analysis

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"

	"github.com/Alain-L/slowq/config"
)

// ErrUnsupportedFamily is returned for database families slowq refuses to
// create indexes on.
var ErrUnsupportedFamily = errors.New("unsupported database family")

// maxIndexNameBytes returns the identifier length bound of a family.
func maxIndexNameBytes(family config.Family) (int, error) {
	switch family {
	case config.FamilyPostgres:
		return 63, nil
	case config.FamilyMySQL, config.FamilyMariaDB:
		return 64, nil
	case config.FamilyMSSQL:
		return 0, errors.Wrap(ErrUnsupportedFamily, "mssql: use PostgreSQL, MySQL, MariaDB or Oracle")
	default:
		// oracle and anything unknown
		return 30, nil
	}
}

// MakeIndexName joins the columns with "_" and, while the name is over the
// family's byte bound, drops the last byte of every column still longer than
// one byte. When shrinking cannot get under the bound, the name is cut and
// suffixed with "_" and six hex digits of the SHA-1 of the original name.
func MakeIndexName(family config.Family, columns []string) (string, error) {
	maxBytes, err := maxIndexNameBytes(family)
	if err != nil {
		return "", err
	}

	work := append([]string(nil), columns...)
	name := strings.Join(work, "_")
	for len(name) > maxBytes {
		changed := false
		for i, col := range work {
			if len(col) > 1 {
				work[i] = col[:len(col)-1]
				changed = true
			}
		}
		name = strings.Join(work, "_")
		if !changed {
			break
		}
	}

	if len(name) > maxBytes {
		sum := sha1.Sum([]byte(strings.Join(columns, "_")))
		keep := maxBytes - 7
		if keep < 0 {
			keep = 0
		}
		name = name[:keep] + "_" + hex.EncodeToString(sum[:])[:6]
	}
	return name, nil
}
