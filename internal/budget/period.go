package budget

import (
	"fmt"
	"time"

	apperrors "github.com/Antonio-217/controle-financeiro/internal/errors"
	"github.com/Antonio-217/controle-financeiro/internal/models"
)

const periodLayout = "2006-01"

// Period is a calendar month. The zero value is not a valid period.
type Period struct {
	Year  int
	Month time.Month
}

// CurrentPeriod returns the month containing now.
func CurrentPeriod(now time.Time) Period {
	return Period{Year: now.Year(), Month: now.Month()}
}

// ParsePeriod parses "YYYY-MM".
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse(periodLayout, s)
	if err != nil {
		return Period{}, apperrors.Wrap(apperrors.ErrInvalidPeriod, err)
	}
	return CurrentPeriod(t), nil
}

// Previous returns the month before p, rolling back the year after January.
func (p Period) Previous() Period {
	return p.shift(-1)
}

// Next returns the month after p, rolling the year over after December.
func (p Period) Next() Period {
	return p.shift(1)
}

func (p Period) shift(months int) Period {
	t := time.Date(p.Year, p.Month+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	return CurrentPeriod(t)
}

// Range returns the first and last day of the month, both inclusive.
func (p Period) Range() (models.Date, models.Date) {
	first := models.NewDate(p.Year, p.Month, 1)
	last := models.NewDate(p.Year, p.Month+1, 0)
	return first, last
}

// Contains reports whether d falls inside the month.
func (p Period) Contains(d models.Date) bool {
	return d.Year() == p.Year && d.Month() == p.Month
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// MarshalText encodes the period as "YYYY-MM".
func (p Period) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes "YYYY-MM".
func (p *Period) UnmarshalText(b []byte) error {
	parsed, err := ParsePeriod(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
