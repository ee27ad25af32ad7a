package dbtypes

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTime_Scan(t *testing.T) {
	want := time.Date(2026, 3, 14, 9, 26, 53, 589793000, time.UTC)

	tests := []struct {
		name string
		src  any
	}{
		{name: "time value", src: want.In(time.FixedZone("WAT", 3600))},
		{name: "sqlite text", src: "2026-03-14 09:26:53.589793+00:00"},
		{name: "bytes", src: []byte("2026-03-14T09:26:53.589793Z")},
		{name: "naive", src: "2026-03-14 09:26:53.589793"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got time.Time
			require.NoError(t, Time{T: &got}.Scan(tt.src))
			assert.True(t, want.Equal(got), "got %v", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestTime_ScanRejectsGarbage(t *testing.T) {
	var got time.Time
	assert.Error(t, Time{T: &got}.Scan("yesterday"))
	assert.Error(t, Time{T: &got}.Scan(42))
}

func TestJSON_Scan(t *testing.T) {
	var m map[string]any

	require.NoError(t, JSON{V: &m}.Scan([]byte(`{"name":"Awa","phone":"+237600000000"}`)))
	assert.Equal(t, "Awa", m["name"])

	require.NoError(t, JSON{V: &m}.Scan(nil))
	assert.NotNil(t, m)
	assert.Empty(t, m)

	assert.Error(t, JSON{V: &m}.Scan("[1,2]"))
}

func TestEncodeJSON(t *testing.T) {
	s, err := EncodeJSON(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", s)

	s, err = EncodeJSON(map[string]any{"amount": 3000})
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":3000}`, s)

	_, err = EncodeJSON(map[string]any{"bad": make(chan int)})
	assert.Error(t, err)
}

func TestIsDuplicateKey_MySQL(t *testing.T) {
	assert.True(t, IsDuplicateKey(&mysql.MySQLError{Number: 1062}))
	assert.True(t, IsDuplicateKey(fmt.Errorf("inserting order: %w", &mysql.MySQLError{Number: 1062})))
	assert.False(t, IsDuplicateKey(&mysql.MySQLError{Number: 1213}))
	assert.False(t, IsDuplicateKey(errors.New("boom")))
}

func TestIsRetryable_MySQL(t *testing.T) {
	assert.True(t, IsRetryable(&mysql.MySQLError{Number: 1213}))
	assert.True(t, IsRetryable(&mysql.MySQLError{Number: 1205}))
	assert.False(t, IsRetryable(&mysql.MySQLError{Number: 1062}))
	assert.False(t, IsRetryable(errors.New("boom")))
}
