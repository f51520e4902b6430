package database

import (
	"testing"

	"commerce-service/config"
	"commerce-service/models"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	cfg := &config.Config{DBUser: "root", DBPassword: "pw", DBHost: "db", DBPort: "3306", DBName: "ecommerce"}
	parsed, err := mysql.ParseDSN(DSN(cfg))
	require.NoError(t, err)
	assert.Equal(t, "root", parsed.User)
	assert.Equal(t, "pw", parsed.Passwd)
	assert.Equal(t, "db:3306", parsed.Addr)
	assert.Equal(t, "ecommerce", parsed.DBName)
	assert.True(t, parsed.ParseTime)
}

func TestDefaultFixtures(t *testing.T) {
	fx := DefaultFixtures()
	require.Len(t, fx.Products, 10)

	tv := fx.Products[1]
	assert.Equal(t, "Smart TV", tv.Name)
	assert.Equal(t, []int64{2, 3}, tv.CategoryIDs())

	totals := map[int64]float64{}
	for _, o := range fx.Orders {
		totals[o.ID] = o.Total()
	}
	assert.Equal(t, 1431.0, totals[1])
	assert.Equal(t, 1250.0, totals[2])
	assert.Equal(t, models.StatusDelivered, fx.Orders[1].Status)
	assert.Equal(t, "Alex Green", fx.Orders[1].Client.Name)

	for _, p := range fx.Products {
		assert.NotEmpty(t, p.Categories, p.Name)
		assert.Greater(t, p.Price, 0.0, p.Name)
	}
}
