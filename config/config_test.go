package config_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/paye-engine/attendance"
	"github.com/warp/paye-engine/config"
	"github.com/warp/paye-engine/payroll"
)

const sample = `
server:
  port: 9090
database:
  path: /tmp/paye.db
log:
  level: debug
companies:
  - id: Acme MU
    country: Mauritius
    thirteenth_month_tax: true
    thirteen_period_countries: [Mauritius]
    overtime_basis: actual
shift_types:
  - name: Day
    start_time: "09:00"
    end_time: "17:00"
    late_entry_grace_minutes: 10
    overtime_pay_rate: "300"
    overtime_component: Overtime
`

type recordingSeeder struct {
	companies []payroll.PolicyConfig
	shifts    []attendance.ShiftDefinition
}

func (r *recordingSeeder) SaveCompany(_ context.Context, p payroll.PolicyConfig) error {
	r.companies = append(r.companies, p)
	return nil
}

func (r *recordingSeeder) SaveShiftType(_ context.Context, def attendance.ShiftDefinition) error {
	r.shifts = append(r.shifts, def)
	return nil
}

func TestParse(t *testing.T) {
	c, err := config.Parse(strings.NewReader(sample))
	require.NoError(t, err)

	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, "/tmp/paye.db", c.Database.Path)
	assert.NotEmpty(t, c.Server.AllowedOrigins)

	lvl, err := c.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}

func TestLoad_DefaultsWhenNoPath(t *testing.T) {
	c, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultPort, c.Server.Port)
	assert.Equal(t, config.DefaultDBPath, c.Database.Path)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paye.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  path: ':memory:'\n"), 0o600))

	c, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":memory:", c.Database.Path)
	assert.Equal(t, config.DefaultPort, c.Server.Port)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParse_Invalid(t *testing.T) {
	tests := map[string]string{
		"unknown key":   "serverr:\n  port: 1\n",
		"port range":    "server:\n  port: 70000\n",
		"log level":     "log:\n  level: chatty\n",
		"bad company":   "companies:\n  - country: Mauritius\n",
		"bad shift":     "shift_types:\n  - name: X\n    start_time: noon\n",
		"bad yaml type": "server:\n  port: eighty\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := config.Parse(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestSeed(t *testing.T) {
	// GIVEN: A config with one company and one shift type
	c, err := config.Parse(strings.NewReader(sample))
	require.NoError(t, err)

	// WHEN: Seeding
	var s recordingSeeder
	require.NoError(t, c.Seed(context.Background(), &s))

	// THEN: Both are converted and written
	require.Len(t, s.companies, 1)
	assert.Equal(t, payroll.OvertimeActual, s.companies[0].OvertimeBasis)
	require.Len(t, s.shifts, 1)
	assert.Equal(t, "Overtime", s.shifts[0].OvertimeComponent)
	assert.Equal(t, int64(8*3600), s.shifts[0].DurationSeconds())
}
