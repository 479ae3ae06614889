package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectRows(t *testing.T, s *Sheet) []Row {
	t.Helper()
	var rows []Row
	for row, err := range s.Rows() {
		require.NoError(t, err)
		rows = append(rows, row)
	}
	return rows
}

func TestParse_QuotedFieldKeepsCommas(t *testing.T) {
	sheet, err := ParseString("rollNumber,roundsName\n2024002,\"Aptitude, Technical\"\n")
	require.NoError(t, err)

	rows := collectRows(t, sheet)
	require.Len(t, rows, 1)
	assert.Equal(t, "Aptitude, Technical", rows[0].Get("roundsName"))
}

func TestParse_RowNumbersCountHeader(t *testing.T) {
	sheet, err := ParseString("name,rollNumber\nA,1\nB,2\n")
	require.NoError(t, err)

	rows := collectRows(t, sheet)
	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].Number)
	assert.Equal(t, 3, rows[1].Number)
}

func TestParse_RowNumbersFollowPhysicalLines(t *testing.T) {
	csvText := "rollNumber,notes\n" +
		"1,\"first line\nsecond line\"\n" +
		"\n" +
		"2,plain\n"
	sheet, err := ParseString(csvText)
	require.NoError(t, err)

	rows := collectRows(t, sheet)
	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].Number)
	assert.Equal(t, "first line\nsecond line", rows[0].Get("notes"))
	assert.Equal(t, 5, rows[1].Number, "quoted break and blank line both count")
}

func TestParse_HeaderLookupIsForgiving(t *testing.T) {
	sheet, err := ParseString("\ufeffName , Roll Number,roll_no\nAsha, 2024010 ,x\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Roll Number", "roll_no"}, sheet.Header)

	rows := collectRows(t, sheet)
	require.Len(t, rows, 1)
	assert.Equal(t, "Asha", rows[0].Get("name"))
	assert.Equal(t, "2024010", rows[0].Get("rollNumber"))
	assert.Equal(t, "", rows[0].Get("email"), "absent column reads as blank")
}

func TestParse_ShortRowAndBlankLines(t *testing.T) {
	sheet, err := ParseString("name,rollNumber,branch\n\nAsha,2024010\n,,\nRavi,2024011,ME\n")
	require.NoError(t, err)

	rows := collectRows(t, sheet)
	require.Len(t, rows, 2)
	assert.Equal(t, "", rows[0].Get("branch"))
	assert.Equal(t, "ME", rows[1].Get("branch"))
}

func TestParse_RowsIsSingleUse(t *testing.T) {
	sheet, err := ParseString("name,rollNumber\nA,1\nB,2\n")
	require.NoError(t, err)

	assert.Len(t, collectRows(t, sheet), 2)
	assert.Empty(t, collectRows(t, sheet), "second pass must not restart the stream")
}

func TestParse_StopsWhenConsumerStops(t *testing.T) {
	sheet, err := ParseString("name,rollNumber\nA,1\nB,2\nC,3\n")
	require.NoError(t, err)

	seen := 0
	for range sheet.Rows() {
		seen++
		break
	}
	assert.Equal(t, 1, seen)
}

func TestParse_FileLevelErrors(t *testing.T) {
	_, err := ParseString("")
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = ParseString(",,\nA,1,2\n")
	assert.ErrorIs(t, err, ErrNoHeader)
}

func TestValidateRow_ReportsEveryMissingColumnOnce(t *testing.T) {
	row := NewRow(4, map[string]string{"rollNumber": "2024001", "companyName": " "})

	v, err := ValidateRow(row, KindDriveDetails)
	require.NoError(t, err)
	assert.False(t, v.OK())
	assert.Equal(t, []string{"companyName", "date", "roundsQualified", "roundsName", "failedRound"}, v.Missing)
	assert.EqualError(t, v.Err(), "Row 4: missing companyName, date, roundsQualified, roundsName, failedRound")

	_, err = ValidateRow(row, Kind("payroll"))
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestParseKind(t *testing.T) {
	cases := map[string]Kind{
		"students":      KindStudents,
		"driveDetails":  KindDriveDetails,
		"drive-details": KindDriveDetails,
		"drive_details": KindDriveDetails,
		"Events":        KindEvents,
		"alumni":        KindAlumni,
		"attendance":    KindAttendance,
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			got, err := ParseKind(in)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}

	_, err := ParseKind("grades")
	assert.ErrorIs(t, err, ErrUnknownKind)
}
