package common

import (
	"time"
)

// Dates and timestamps are held relative to the engine's epoch, 2000-01-01 00:00:00 UTC,
// and written relative to the Unix epoch.

const (
	UnixEpochJDate     = 2440588 // Julian day of 1970-01-01
	PostgresEpochJDate = 2451545 // Julian day of 2000-01-01

	SecsPerDay  = 86400
	USecsPerDay = int64(SecsPerDay) * 1000000

	// EpochDeltaDays is the number of days from the Unix epoch to the engine epoch.
	EpochDeltaDays = PostgresEpochJDate - UnixEpochJDate
	// EpochDeltaMicros is EpochDeltaDays in microseconds.
	EpochDeltaMicros = int64(EpochDeltaDays) * USecsPerDay
)

var postgresEpoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Date is a day count relative to 2000-01-01.
type Date int32

// Timestamp is a microsecond count relative to 2000-01-01 00:00:00 UTC.
type Timestamp int64

func DateFromTime(t time.Time) Date {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return Date(day.Unix()/SecsPerDay - EpochDeltaDays)
}

// UnixDays returns the number of days since 1970-01-01.
func (d Date) UnixDays() int32 {
	return int32(d) + EpochDeltaDays
}

func (d Date) Time() time.Time {
	return postgresEpoch.AddDate(0, 0, int(d))
}

func (d Date) String() string {
	return d.Time().Format("2006-01-02")
}

func TimestampFromTime(t time.Time) Timestamp {
	secs := t.Unix()
	micros := secs*1000000 + int64(t.Nanosecond()/1000)
	return Timestamp(micros - EpochDeltaMicros)
}

// UnixMicros returns the number of microseconds since 1970-01-01 00:00:00 UTC.
func (ts Timestamp) UnixMicros() int64 {
	return int64(ts) + EpochDeltaMicros
}

func (ts Timestamp) Time() time.Time {
	micros := ts.UnixMicros()
	return time.Unix(micros/1000000, (micros%1000000)*1000).UTC()
}

func (ts Timestamp) String() string {
	return ts.Time().Format("2006-01-02 15:04:05.999999Z07:00")
}
