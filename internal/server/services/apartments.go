package services

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"github.com/dmitrijs2005/tegenaria/internal/common"
	"github.com/dmitrijs2005/tegenaria/internal/server/models"
	"github.com/dmitrijs2005/tegenaria/internal/server/repositories/repomanager"
	"github.com/shopspring/decimal"
)

type ApartmentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewApartmentService(db *sql.DB, m repomanager.RepositoryManager) *ApartmentService {
	return &ApartmentService{db: db, repomanager: m}
}

type rentKey struct {
	warm decimal.Decimal
	cold decimal.Decimal
}

type keyedApartment struct {
	item models.Apartment
	key  rentKey
}

// ListOrdered returns all apartments ordered by warm rent and then cold rent,
// both compared as numbers. Ties keep repository order. A rent that is not a
// number fails the whole call with a *common.CoercionError.
func (s *ApartmentService) ListOrdered(ctx context.Context) ([]models.Apartment, error) {
	items, err := s.repomanager.Apartments(s.db).ListAll(ctx)
	if err != nil {
		return nil, err
	}

	keyed := make([]keyedApartment, 0, len(items))
	for _, a := range items {
		warm, err := parseRent(a.ID, "warm_rent", a.WarmRent)
		if err != nil {
			return nil, err
		}
		cold, err := parseRent(a.ID, "cold_rent", a.ColdRent)
		if err != nil {
			return nil, err
		}
		keyed = append(keyed, keyedApartment{item: a, key: rentKey{warm: warm, cold: cold}})
	}

	sort.SliceStable(keyed, func(i, j int) bool {
		ki, kj := keyed[i].key, keyed[j].key
		if c := ki.warm.Cmp(kj.warm); c != 0 {
			return c < 0
		}
		return ki.cold.Cmp(kj.cold) < 0
	})

	out := make([]models.Apartment, len(keyed))
	for i, k := range keyed {
		out[i] = k.item
	}
	return out, nil
}

func parseRent(id int64, field, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Decimal{}, &common.CoercionError{RecordID: id, Field: field, Value: value, Err: err}
	}
	return d, nil
}
