package importer

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reconcileString(t *testing.T, csvText string, kind Kind) *Batch {
	t.Helper()
	b, err := ReconcileReader(strings.NewReader(csvText), kind)
	require.NoError(t, err)
	return b
}

// Two rows for one roll number fold into a single student with both drives.
func TestReconcile_StudentDrivesAggregateByRollNumber(t *testing.T) {
	csvText := "name,rollNumber,selected,driveCompanyName,driveDate,driveRoundsQualified,driveRoundsName,driveStatus\n" +
		"Diya Patel,2024002,false,TCS,12-08-2024,2,\"Aptitude, Technical\",not shortlisted\n" +
		"Diya Patel,2024002,false,Infosys,03-09-2024,1,Aptitude,Not Shortlisted\n"

	b := reconcileString(t, csvText, KindStudents)
	require.Empty(t, b.Errors)
	require.Len(t, b.Students, 1)

	s := b.Students[0]
	assert.Equal(t, "2024002", s.RollNumber)
	assert.Equal(t, []int{2, 3}, s.Rows)
	require.Len(t, s.Drives, 2)
	assert.Equal(t, "TCS", s.Drives[0].CompanyName)
	assert.Equal(t, "Infosys", s.Drives[1].CompanyName)
	assert.Equal(t, time.Date(2024, time.August, 12, 0, 0, 0, 0, time.UTC), s.Drives[0].Date)
	assert.Equal(t, []string{"Aptitude", "Technical"}, s.Drives[0].Rounds())
	assert.Equal(t, DriveNotShortlisted, s.Drives[1].Status)

	res := b.Result()
	assert.True(t, res.Success)
	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 2, res.TotalRows)
	assert.Empty(t, res.Errors)
}

func TestReconcile_MissingNameIsTheOnlyRow(t *testing.T) {
	res := Import("name,rollNumber\n,2024003\n", "students")

	assert.False(t, res.Success)
	assert.Equal(t, 0, res.Imported)
	assert.Equal(t, []string{"Row 2: missing name"}, res.Errors)
}

// Alumni with a job but no ID card passes the required check and only
// carries a warning.
func TestReconcile_AlumniJobWithoutIDCardIsWarned(t *testing.T) {
	csvText := "name,rollNumber,passOutYear,currentStatus,address,contactNumber,email,companyName,idCardUrl\n" +
		"Rohan Mehta,2019045,2023,job,Pune,9876500003,rohan@example.com,Capgemini,\n"

	res := Import(csvText, "alumni")
	assert.True(t, res.Success)
	assert.Equal(t, 1, res.Imported)
	assert.Empty(t, res.Errors)
	assert.Equal(t, []string{"Row 2: idCardUrl is expected when currentStatus is job"}, res.Warnings)
}

// Later rows overwrite scalar fields of earlier rows with the same roll
// number; drives keep accumulating.
func TestReconcile_LastRowWinsForStudentScalars(t *testing.T) {
	csvText := "name,rollNumber,branch,year,driveCompanyName\n" +
		"Diya Patel,2024002,ECE,3,TCS\n" +
		"Asha Rao,2024009,CSE,4,\n" +
		"Diya P.,2024002,EEE,4,Infosys\n"

	b := reconcileString(t, csvText, KindStudents)
	require.Empty(t, b.Errors)
	require.Len(t, b.Students, 2)

	assert.Equal(t, "2024002", b.Students[0].RollNumber, "first-seen order is kept")
	assert.Equal(t, "Diya P.", b.Students[0].Name)
	assert.Equal(t, "EEE", b.Students[0].Branch)
	assert.Equal(t, 4, b.Students[0].Year)
	require.Len(t, b.Students[0].Drives, 2)
	assert.Equal(t, "TCS", b.Students[0].Drives[0].CompanyName)
	assert.Equal(t, "Infosys", b.Students[0].Drives[1].CompanyName)

	assert.Equal(t, "2024009", b.Students[1].RollNumber)
	assert.Empty(t, b.Students[1].Drives)
}

func TestReconcile_AggregationInvariant(t *testing.T) {
	csvText := "name,rollNumber,driveCompanyName,driveNotes\n" +
		"A,1,TCS,\n" +
		"A,1,,\n" +
		"B,2,,walk-in\n" +
		"C,3,,\n" +
		"A,1,Wipro,\n" +
		"B,2,Infosys,\n"

	b := reconcileString(t, csvText, KindStudents)
	require.Empty(t, b.Errors)

	distinct := map[string]bool{}
	drives := 0
	for _, s := range b.Students {
		distinct[s.RollNumber] = true
		drives += len(s.Drives)
	}
	assert.Equal(t, len(distinct), len(b.Students))
	assert.Equal(t, 4, drives, "one drive per row with any drive column populated")
	assert.Equal(t, 3, b.Result().Imported)
}

func TestReconcile_IsIdempotent(t *testing.T) {
	csvText := "name,rollNumber,year,driveCompanyName,driveRoundsQualified\n" +
		"A,1,2,TCS,2\n" +
		",2,1,,\n" +
		"C,3,9,,\n" +
		"A,1,2,Wipro,x\n"

	first := Import(csvText, "students")
	second := Import(csvText, "students")
	assert.Equal(t, first, second)
	assert.Equal(t, []string{
		`Row 3: missing name`,
		`Row 4: invalid year "9"`,
		`Row 5: invalid driveRoundsQualified "x"`,
	}, first.Errors)
	assert.Equal(t, 1, first.Imported)
	assert.True(t, first.Success)
}

func TestReconcile_BadRowDoesNotStopBatch(t *testing.T) {
	csvText := "rollNumber,companyName,date,roundsQualified,roundsName,failedRound,status\n" +
		"2024002,TCS,12-08-2024,two,Aptitude,Technical,not shortlisted\n" +
		"2024002,Wipro,20/09/2024,3,\"Aptitude, Technical, HR\",None,shortlisted\n" +
		"2024005,Infosys,2024-13-01,1,Aptitude,Technical,\n" +
		"2024007,Accenture,01.10.2024,0,Aptitude,Aptitude,maybe\n" +
		"2024005,Cognizant,5-10-2024,1,Aptitude,Technical,\n"

	b := reconcileString(t, csvText, KindDriveDetails)
	assert.Equal(t, []string{
		`Row 2: invalid roundsQualified "two"`,
		`Row 4: invalid date "2024-13-01"`,
		`Row 5: invalid status "maybe"`,
	}, Messages(b.Errors))

	require.Len(t, b.DriveGroups, 2)
	assert.Equal(t, "2024002", b.DriveGroups[0].RollNumber)
	assert.Equal(t, "Wipro", b.DriveGroups[0].Drives[0].CompanyName)
	assert.Equal(t, 3, b.DriveGroups[0].Drives[0].RoundsQualified)
	assert.Equal(t, "2024005", b.DriveGroups[1].RollNumber)
	assert.Equal(t, 6, b.DriveGroups[1].Drives[0].Row)
	assert.Equal(t, 2, b.Len(), "drive rows count individually")

	res := b.Result()
	assert.True(t, res.Success)
	assert.Equal(t, "Imported 2 records, 3 rows failed", res.Message)
}

func TestReconcile_UnselectedStudentDropsPlacementFields(t *testing.T) {
	csvText := "name,rollNumber,selected,companyName,package\n" +
		"Ravi,2024011,false,Infosys,6.5\n" +
		"Asha,2024010,yes,TCS,7\n"

	b := reconcileString(t, csvText, KindStudents)
	require.Empty(t, b.Errors)
	require.Len(t, b.Students, 2)

	assert.Empty(t, b.Students[0].CompanyName)
	assert.Nil(t, b.Students[0].Package)
	assert.True(t, b.Students[1].Selected)
	require.NotNil(t, b.Students[1].Package)
	assert.Equal(t, 7.0, *b.Students[1].Package)
	assert.Equal(t, []string{"Row 2: placement fields ignored because selected is false"}, Messages(b.Warnings))
}

func TestReconcile_OneRecordPerRowForFlatKinds(t *testing.T) {
	events := "title,description,company,startDate,endDate\n" +
		"Drive,Pool drive,Accenture,2025-01-10T09:00:00+05:30,2025-01-10T17:00:00Z\n" +
		"Talk,Alumni talk,TCS,2025-02-01,2025-01-31\n"
	b := reconcileString(t, events, KindEvents)
	require.Empty(t, b.Errors)
	require.Len(t, b.Events, 2)
	assert.Equal(t, time.Date(2025, 1, 10, 3, 30, 0, 0, time.UTC), b.Events[0].StartDate)
	assert.True(t, b.Events[1].EndDate.Before(b.Events[1].StartDate), "end before start is accepted")

	attendance := "eventId,studentName,rollNumber,year\n" +
		"e1,Asha,2024010,4\n" +
		"e1,Asha,2024010,4\n"
	b = reconcileString(t, attendance, KindAttendance)
	require.Empty(t, b.Errors)
	assert.Len(t, b.Attendance, 2)
	assert.Equal(t, "e1", b.Attendance[0].EventID)
}

func TestReconcile_HeaderOnlyFile(t *testing.T) {
	res := Import("title,description,company,startDate,endDate\n", "events")
	assert.True(t, res.Success)
	assert.Equal(t, 0, res.Imported)
	assert.Equal(t, "No records found in file", res.Message)
	assert.NotNil(t, res.Errors)
}

func TestImport_FileLevelFailures(t *testing.T) {
	res := Import("", "events")
	assert.False(t, res.Success)
	assert.Equal(t, ErrEmptyFile.Error(), res.Message)

	res = Import("a,b\n1,2\n", "salaries")
	assert.False(t, res.Success)
	assert.Equal(t, ErrUnknownKind.Error(), res.Message)
}
