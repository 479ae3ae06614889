package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tpo-cell/backend/internal/domain"
	"github.com/tpo-cell/backend/internal/importer"
	"github.com/tpo-cell/backend/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(domain.AllModels()...))
	return db
}

func newImportService(db *gorm.DB) *ImportService {
	return NewImportService(
		repository.NewStudentRepository(db),
		repository.NewAlumniRepository(db),
		repository.NewEventRepository(db),
		repository.NewAttendanceRepository(db),
	)
}

func runImport(t *testing.T, svc *ImportService, kind importer.Kind, csvText string, opts ...func(*ImportRequest)) importer.ImportResult {
	t.Helper()
	req := ImportRequest{Kind: kind, Reader: strings.NewReader(csvText)}
	for _, opt := range opts {
		opt(&req)
	}
	res, err := svc.Import(context.Background(), req)
	require.NoError(t, err)
	return res
}

func TestImportService_StudentsPersistAggregatedDrives(t *testing.T) {
	db := setupTestDB(t)
	svc := newImportService(db)

	csvText := "name,rollNumber,selected,driveCompanyName,driveDate,driveRoundsQualified,driveRoundsName,driveStatus\n" +
		"Diya Patel,2024002,false,TCS,12-08-2024,2,\"Aptitude, Technical\",not shortlisted\n" +
		"Diya Patel,2024002,false,Infosys,03-09-2024,1,Aptitude,not shortlisted\n"

	res := runImport(t, svc, importer.KindStudents, csvText)
	assert.True(t, res.Success)
	assert.Equal(t, 1, res.Imported)
	assert.Empty(t, res.Errors)

	var students []domain.Student
	require.NoError(t, db.Preload("Drives").Find(&students).Error)
	require.Len(t, students, 1)
	assert.Equal(t, "Diya Patel", students[0].Name)
	require.Len(t, students[0].Drives, 2)
	for _, d := range students[0].Drives {
		require.NotNil(t, d.Date)
		assert.Equal(t, domain.DriveNotShortlisted, d.Status)
	}
}

func TestImportService_ReimportingDrivesKeepsHistory(t *testing.T) {
	db := setupTestDB(t)
	svc := newImportService(db)

	studentsCSV := "name,rollNumber,driveCompanyName,driveDate,driveRoundsQualified,driveRoundsName,driveFailedRound\n" +
		"Diya Patel,2024002,TCS,12-08-2024,2,Aptitude,HR\n" +
		"Diya Patel,2024002,Infosys,03-09-2024,1,Aptitude,Technical\n" +
		"Diya Patel,2024002,Accenture,10-09-2024,0,None,Aptitude\n"
	driveCSV := "rollNumber,companyName,date,roundsQualified,roundsName,failedRound\n" +
		"2024002,Wipro,20-09-2024,3,\"Aptitude, Technical, HR\",None\n"

	for i := 0; i < 2; i++ {
		res := runImport(t, svc, importer.KindStudents, studentsCSV)
		require.True(t, res.Success)
		res = runImport(t, svc, importer.KindDriveDetails, driveCSV)
		require.True(t, res.Success)
		assert.Equal(t, 1, res.Imported)
	}

	student, err := repository.NewStudentRepository(db).FindByRollNumber("2024002")
	require.NoError(t, err)
	drives, err := repository.NewStudentRepository(db).ListDrives(student.ID)
	require.NoError(t, err)

	var companies []string
	for _, d := range drives {
		companies = append(companies, d.CompanyName)
	}
	assert.Equal(t, []string{"TCS", "Infosys", "Accenture", "Wipro"}, companies)
}

func TestImportService_StudentsReimportUpdatesInPlace(t *testing.T) {
	db := setupTestDB(t)
	svc := newImportService(db)

	runImport(t, svc, importer.KindStudents, "name,rollNumber,branch\nAarav,2024001,CSE\n")
	res := runImport(t, svc, importer.KindStudents, "name,rollNumber,branch\nAarav Sharma,2024001,IT\n")
	assert.Equal(t, 1, res.Imported)

	var students []domain.Student
	require.NoError(t, db.Find(&students).Error)
	require.Len(t, students, 1)
	assert.Equal(t, "Aarav Sharma", students[0].Name)
	assert.Equal(t, "IT", students[0].Branch)
}

func TestImportService_DriveDetailsNeedAnExistingStudent(t *testing.T) {
	db := setupTestDB(t)
	svc := newImportService(db)
	require.NoError(t, repository.NewStudentRepository(db).Create(&domain.Student{RollNumber: "2024002", Name: "Diya"}))

	csvText := "rollNumber,companyName,date,roundsQualified,roundsName,failedRound,status\n" +
		"2024002,TCS,12-08-2024,2,\"Aptitude, Technical\",HR,not shortlisted\n" +
		"2024002,Wipro,20-09-2024,3,Aptitude,None,shortlisted\n" +
		"2029999,HCL,01-10-2024,1,Aptitude,Technical,not shortlisted\n" +
		"2024002,Accenture,notadate,1,Aptitude,Technical,shortlisted\n"

	res := runImport(t, svc, importer.KindDriveDetails, csvText)
	assert.True(t, res.Success)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 4, res.TotalRows)
	assert.Equal(t, []string{
		"Row 4: student with roll number 2029999 not found",
		`Row 5: invalid date "notadate"`,
	}, res.Errors, "errors are sorted by row across reconcile and persistence")
	assert.Equal(t, "Imported 2 records, 2 rows failed", res.Message)

	var count int64
	db.Model(&domain.Drive{}).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestImportService_DriveDetailsAllMissingFails(t *testing.T) {
	db := setupTestDB(t)
	svc := newImportService(db)

	csvText := "rollNumber,companyName,date,roundsQualified,roundsName,failedRound\n" +
		"1,TCS,12-08-2024,2,Aptitude,HR\n" +
		"1,HCL,13-08-2024,1,Aptitude,HR\n"

	res := runImport(t, svc, importer.KindDriveDetails, csvText)
	assert.False(t, res.Success)
	assert.Zero(t, res.Imported)
	assert.Equal(t, []string{
		"Row 2: student with roll number 1 not found",
		"Row 3: student with roll number 1 not found",
	}, res.Errors)
}

func TestImportService_AttendanceResolvesEvent(t *testing.T) {
	db := setupTestDB(t)
	svc := newImportService(db)

	now := time.Now().UTC()
	ev := &domain.Event{Title: "Drive", Description: "Campus drive", Company: "TCS", StartDate: now, EndDate: now}
	require.NoError(t, repository.NewEventRepository(db).Create(ev))
	unknown := uuid.New()

	csvText := "studentName,rollNumber,eventId\n" +
		"Aarav,1,\n" +
		"Diya,2," + ev.ID.String() + "\n" +
		"Kabir,3," + unknown.String() + "\n" +
		"Aarav,1,\n"

	res := runImport(t, svc, importer.KindAttendance, csvText, func(r *ImportRequest) { r.EventID = ev.ID.String() })
	assert.True(t, res.Success)
	assert.Equal(t, 3, res.Imported, "the repeated row is an upsert, still persisted")
	assert.Equal(t, []string{"Row 4: event " + unknown.String() + " not found"}, res.Errors)

	count, err := repository.NewAttendanceRepository(db).CountByEvent(ev.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestImportService_AttendanceWithoutAnyEventID(t *testing.T) {
	db := setupTestDB(t)
	svc := newImportService(db)

	res := runImport(t, svc, importer.KindAttendance, "studentName,rollNumber\nAarav,1\nDiya,2,\n")
	assert.False(t, res.Success)
	assert.Equal(t, []string{"Row 2: missing eventId", "Row 3: missing eventId"}, res.Errors)
	assert.Equal(t, "Import failed: 2 rows rejected", res.Message)
}

func TestImportService_DryRunWritesNothing(t *testing.T) {
	db := setupTestDB(t)
	svc := newImportService(db)

	tpl, err := importer.Template(importer.KindStudents)
	require.NoError(t, err)

	res := runImport(t, svc, importer.KindStudents, tpl, func(r *ImportRequest) { r.DryRun = true })
	assert.True(t, res.DryRun)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, importer.Import(tpl, "students").Errors, res.Errors)

	var count int64
	db.Model(&domain.Student{}).Count(&count)
	assert.Zero(t, count)
}

func TestImportService_EventsAndAlumni(t *testing.T) {
	db := setupTestDB(t)
	svc := newImportService(db)

	tpl, _ := importer.Template(importer.KindEvents)
	res := runImport(t, svc, importer.KindEvents, tpl)
	assert.Equal(t, 1, res.Imported)

	var ev domain.Event
	require.NoError(t, db.First(&ev).Error)
	assert.Equal(t, "Accenture", ev.Company)
	assert.True(t, ev.StartDate.Equal(time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)))
	assert.Nil(t, ev.AttachmentURL)

	tpl, _ = importer.Template(importer.KindAlumni)
	runImport(t, svc, importer.KindAlumni, tpl)
	res = runImport(t, svc, importer.KindAlumni, tpl)
	assert.Equal(t, 1, res.Imported)

	var count int64
	db.Model(&domain.Alumni{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestImportService_FileLevelErrors(t *testing.T) {
	db := setupTestDB(t)
	svc := newImportService(db)

	res, err := svc.Import(context.Background(), ImportRequest{Kind: importer.KindEvents, Reader: strings.NewReader("")})
	assert.ErrorIs(t, err, importer.ErrEmptyFile)
	assert.False(t, res.Success)

	_, err = svc.Import(context.Background(), ImportRequest{Kind: importer.Kind("grades"), Reader: strings.NewReader("a\n1\n")})
	assert.ErrorIs(t, err, importer.ErrUnknownKind)
}

func TestImportService_CancelledContext(t *testing.T) {
	db := setupTestDB(t)
	svc := newImportService(db)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Import(ctx, ImportRequest{Kind: importer.KindStudents, Reader: strings.NewReader("name,rollNumber\nA,1\n")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExportService_StudentsCSVImportsBack(t *testing.T) {
	db := setupTestDB(t)
	svc := newImportService(db)

	tpl, _ := importer.Template(importer.KindStudents)
	runImport(t, svc, importer.KindStudents, tpl)

	var buf bytes.Buffer
	require.NoError(t, NewExportService(repository.NewStudentRepository(db)).WriteStudentsCSV(context.Background(), &buf))

	res := importer.Import(buf.String(), "students")
	assert.True(t, res.Success)
	assert.Empty(t, res.Errors)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 3, res.TotalRows, "one line per drive, or one line for a student without drives")
}
