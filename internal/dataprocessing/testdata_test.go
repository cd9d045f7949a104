package dataprocessing

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"owidreport/pkg/contracts/domain"
)

// owidSample mirrors the OWID layout, including a column the loader ignores
const owidSample = `iso_code,continent,location,date,total_cases,new_cases,total_deaths,new_deaths,total_vaccinations
KEN,Africa,Kenya,2021-01-01,100,10,5,1,
KEN,Africa,Kenya,2021-01-02,,,,,
KEN,Africa,Kenya,2021-01-03,120,10,7,1,50
IND,Asia,India,2021-01-01,1000,100,10,1,
IND,Asia,India,2021-01-02,1100,100,11,1,
PER,South America,Peru,2021-01-01,0,0,0,0,
`

func parseSample(t *testing.T, data string) *domain.Dataset {
	t.Helper()
	ds, err := ParseCSV(context.Background(), strings.NewReader(data))
	require.NoError(t, err)
	return ds
}

var nan = math.NaN()

// record builds an in-memory record with total_cases and new_cases set
func record(location, date string, totalCases, newCases float64) domain.Record {
	r := domain.NewRecord(location, "ISO", date)
	r.TotalCases = totalCases
	r.NewCases = newCases
	return r
}

func dataset(records ...domain.Record) *domain.Dataset {
	return &domain.Dataset{
		Columns: []domain.Column{
			domain.ColISOCode, domain.ColLocation, domain.ColDate,
			domain.ColTotalCases, domain.ColNewCases, domain.ColTotalDeaths,
		},
		Records: records,
	}
}
