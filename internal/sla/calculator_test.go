package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/sla-service/internal/domain"
	apperrors "github.com/spec-kit/sla-service/pkg/util"
)

// Monday 2024-04-01 anchors the test calendar.
var monday = time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

func at(day time.Time, hour, min int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

func weekdayWindows(weekdays ...time.Weekday) WindowTable {
	table := make(WindowTable, len(weekdays))
	for _, wd := range weekdays {
		table[wd] = domain.SupportWindow{Weekday: wd, Start: 9 * time.Hour, End: 17 * time.Hour}
	}
	return table
}

func businessWeek() WindowTable {
	return weekdayWindows(time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday)
}

func snapshot(windows WindowTable, holidays domain.HolidaySet, priority domain.ServiceLevelPriority) Snapshot {
	if holidays == nil {
		holidays = domain.HolidaySet{}
	}
	return Snapshot{Priority: priority, Windows: windows, Holidays: holidays}
}

func hourResponse(hours int) domain.ServiceLevelPriority {
	return domain.ServiceLevelPriority{
		ResponseAllotment:   hours,
		ResponseUnit:        domain.TimeUnitHour,
		ResolutionAllotment: 3,
		ResolutionUnit:      domain.TimeUnitDay,
	}
}

func dayResolution(days int, unit domain.TimeUnit) domain.ServiceLevelPriority {
	return domain.ServiceLevelPriority{
		ResponseAllotment:   4,
		ResponseUnit:        domain.TimeUnitHour,
		ResolutionAllotment: days,
		ResolutionUnit:      unit,
	}
}

func TestComputeDeadlineHourWithinSameDay(t *testing.T) {
	snap := snapshot(businessWeek(), nil, hourResponse(4))

	deadline, err := ComputeDeadline(domain.DeadlineKindResponse, snap, at(monday, 10, 0))
	require.NoError(t, err)
	assert.Equal(t, at(monday, 14, 0), deadline)
}

func TestComputeDeadlineHourSpillsToNextDay(t *testing.T) {
	snap := snapshot(businessWeek(), nil, hourResponse(4))

	// Two window hours remain on Monday; the other two land on Tuesday.
	deadline, err := ComputeDeadline(domain.DeadlineKindResponse, snap, at(monday, 15, 0))
	require.NoError(t, err)
	assert.Equal(t, at(monday.AddDate(0, 0, 1), 11, 0), deadline)
}

func TestComputeDeadlineHourSkipsWeekend(t *testing.T) {
	snap := snapshot(businessWeek(), nil, hourResponse(4))
	saturday := monday.AddDate(0, 0, 5)

	deadline, err := ComputeDeadline(domain.DeadlineKindResponse, snap, at(saturday, 12, 0))
	require.NoError(t, err)
	assert.Equal(t, at(monday.AddDate(0, 0, 7), 13, 0), deadline)
}

func TestComputeDeadlineHourStartAfterClose(t *testing.T) {
	snap := snapshot(businessWeek(), nil, hourResponse(4))

	// Monday contributes nothing after 17:00.
	deadline, err := ComputeDeadline(domain.DeadlineKindResponse, snap, at(monday, 18, 30))
	require.NoError(t, err)
	assert.Equal(t, at(monday.AddDate(0, 0, 1), 13, 0), deadline)
}

func TestComputeDeadlineHourSkipsHoliday(t *testing.T) {
	tuesday := monday.AddDate(0, 0, 1)
	holidays := domain.NewHolidaySet([]time.Time{tuesday})
	snap := snapshot(businessWeek(), holidays, hourResponse(4))

	// The remaining two hours skip the Tuesday holiday and land Wednesday.
	deadline, err := ComputeDeadline(domain.DeadlineKindResponse, snap, at(monday, 15, 0))
	require.NoError(t, err)
	assert.Equal(t, at(monday.AddDate(0, 0, 2), 11, 0), deadline)
}

func TestComputeDeadlineTwoDaysFromFriday(t *testing.T) {
	snap := snapshot(businessWeek(), nil, dayResolution(2, domain.TimeUnitDay))
	friday := monday.AddDate(0, 0, 4)

	// Friday counts as day one, Monday as day two; the deadline stamps
	// close of business one calendar day later, on Tuesday.
	deadline, err := ComputeDeadline(domain.DeadlineKindResolution, snap, at(friday, 10, 0))
	require.NoError(t, err)
	assert.Equal(t, at(monday.AddDate(0, 0, 8), 17, 0), deadline)
}

func TestComputeDeadlineWeekUnit(t *testing.T) {
	snap := snapshot(businessWeek(), nil, dayResolution(1, domain.TimeUnitWeek))

	// One week is seven business days: Mon-Fri, then Mon-Tue, stamped on
	// the following Wednesday.
	deadline, err := ComputeDeadline(domain.DeadlineKindResolution, snap, at(monday, 9, 0))
	require.NoError(t, err)
	assert.Equal(t, at(monday.AddDate(0, 0, 9), 17, 0), deadline)
}

func TestComputeDeadlineZeroDayAllotment(t *testing.T) {
	snap := snapshot(businessWeek(), nil, dayResolution(0, domain.TimeUnitDay))
	start := at(monday, 11, 45)

	deadline, err := ComputeDeadline(domain.DeadlineKindResolution, snap, start)
	require.NoError(t, err)
	assert.Equal(t, start, deadline)
}

func TestComputeDeadlineIdempotent(t *testing.T) {
	holidays := domain.NewHolidaySet([]time.Time{monday.AddDate(0, 0, 2)})
	snap := snapshot(businessWeek(), holidays, hourResponse(12))
	start := at(monday, 16, 10)

	first, err := ComputeDeadline(domain.DeadlineKindResponse, snap, start)
	require.NoError(t, err)
	second, err := ComputeDeadline(domain.DeadlineKindResponse, snap, start)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestComputeDeadlineUnknownKind(t *testing.T) {
	snap := snapshot(businessWeek(), nil, hourResponse(4))

	_, err := ComputeDeadline(domain.DeadlineKind("escalation"), snap, at(monday, 10, 0))
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, "INVALID_PARAMETER"))
}

func TestComputeDeadlineEmptyWindowTable(t *testing.T) {
	snap := snapshot(WindowTable{}, nil, hourResponse(4))

	_, err := ComputeDeadline(domain.DeadlineKindResponse, snap, at(monday, 10, 0))
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, "NO_WORKING_WINDOW"))
}

func TestComputeDeadlineUnusableWindow(t *testing.T) {
	// A window that closes before it opens never yields support time.
	table := WindowTable{
		time.Monday: {Weekday: time.Monday, Start: 17 * time.Hour, End: 9 * time.Hour},
	}
	snap := snapshot(table, nil, hourResponse(1))

	_, err := ComputeDeadline(domain.DeadlineKindResponse, snap, at(monday, 18, 0))
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, "NO_WORKING_WINDOW"))
}

func TestComputeDeadlineSurvivesLongHolidayRun(t *testing.T) {
	// Ten consecutive Mondays off: the eleventh still satisfies the walk.
	table := weekdayWindows(time.Monday)
	var closed []time.Time
	for i := 0; i < 10; i++ {
		closed = append(closed, monday.AddDate(0, 0, 7*i))
	}
	snap := snapshot(table, domain.NewHolidaySet(closed), hourResponse(2))

	deadline, err := ComputeDeadline(domain.DeadlineKindResponse, snap, at(monday, 10, 0))
	require.NoError(t, err)
	assert.Equal(t, at(monday.AddDate(0, 0, 70), 11, 0), deadline)
}

func TestWindowsForLastEntryWins(t *testing.T) {
	level := &domain.ServiceLevel{
		Windows: []domain.SupportWindow{
			{Weekday: time.Monday, Start: 9 * time.Hour, End: 17 * time.Hour},
			{Weekday: time.Monday, Start: 8 * time.Hour, End: 12 * time.Hour},
			{Weekday: time.Friday, Start: 9 * time.Hour, End: 13 * time.Hour},
		},
	}
	table := WindowsFor(level)
	require.Len(t, table, 2)
	assert.Equal(t, 8*time.Hour, table[time.Monday].Start)
	assert.Equal(t, 12*time.Hour, table[time.Monday].End)
}
