package main

import (
	"encoding/json"
	"strconv"
	"testing"

	"github.com/diewo77/go-orcamentos/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func itoa(id uint) string { return strconv.FormatUint(uint64(id), 10) }

func jsonUnmarshal(b []byte, dst any) error { return json.Unmarshal(b, dst) }

func firstItemID(t *testing.T, dbi *gorm.DB, quoteID uint) uint {
	t.Helper()
	var it models.QuoteItem
	require.NoError(t, dbi.Where("quote_id = ?", quoteID).Order("id").First(&it).Error)
	return it.ID
}
