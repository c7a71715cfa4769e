package core

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	cryptoutil "scorecard/internal/platform/crypto"
)

type Store struct {
	DB     *pgxpool.Pool
	Crypto *cryptoutil.Service
}

func NewStore(db *pgxpool.Pool, crypto *cryptoutil.Service) *Store {
	return &Store{DB: db, Crypto: crypto}
}

// sealSalary returns the values for the salary and salary_enc columns. With
// encryption configured only the ciphertext is stored.
func sealSalary(crypto *cryptoutil.Service, salary *decimal.Decimal) (plain any, sealed []byte, err error) {
	if salary == nil {
		return nil, nil, nil
	}
	if crypto == nil || !crypto.Configured() {
		return salary.String(), nil, nil
	}
	sealed, err = crypto.SealAmount(*salary)
	if err != nil {
		return nil, nil, err
	}
	return nil, sealed, nil
}

// openSalary prefers the ciphertext and falls back to the plaintext column for
// rows written before encryption was enabled.
func openSalary(crypto *cryptoutil.Service, sealed []byte, plain *decimal.Decimal) *decimal.Decimal {
	if crypto == nil || !crypto.Configured() || len(sealed) == 0 {
		return plain
	}
	value, err := crypto.OpenAmount(sealed)
	if err != nil {
		return plain
	}
	return &value
}
