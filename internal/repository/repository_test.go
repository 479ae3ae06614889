package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tpo-cell/backend/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory SQLite database with every table migrated
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// every connection to :memory: is a fresh database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(domain.AllModels()...)
	require.NoError(t, err)

	return db
}

func strPtr(s string) *string { return &s }

func TestStudentRepository_UpsertWithDrivesOverwritesAndAppends(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStudentRepository(db)

	first := &domain.Student{RollNumber: "2024001", Name: "Aarav", Branch: "CSE", Year: 3}
	err := repo.UpsertWithDrives(first, []domain.Drive{{CompanyName: "TCS", RoundsQualified: 2}})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, first.ID)

	second := &domain.Student{RollNumber: "2024001", Name: "Aarav Sharma", Branch: "IT", Year: 4}
	err = repo.UpsertWithDrives(second, []domain.Drive{{CompanyName: "Infosys", RoundsQualified: 1}})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "upsert keeps the stored id")

	stored, err := repo.FindByID(first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Aarav Sharma", stored.Name)
	assert.Equal(t, "IT", stored.Branch)
	assert.Equal(t, 4, stored.Year)

	var companies []string
	for _, d := range stored.Drives {
		companies = append(companies, d.CompanyName)
	}
	assert.Equal(t, []string{"TCS", "Infosys"}, companies)

	var count int64
	db.Model(&domain.Student{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func driveCompanies(drives []domain.Drive) []string {
	out := make([]string, 0, len(drives))
	for _, d := range drives {
		out = append(out, d.CompanyName)
	}
	return out
}

func datePtr(s string) *time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return &d
}

func TestStudentRepository_DrivesKeepBatchOrder(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStudentRepository(db)

	student := &domain.Student{RollNumber: "2024002", Name: "Diya", Branch: "ECE", Year: 4}
	err := repo.UpsertWithDrives(student, []domain.Drive{
		{CompanyName: "TCS", Date: datePtr("2024-08-12")},
		{CompanyName: "Infosys", Date: datePtr("2024-09-03")},
		{CompanyName: "Wipro", Date: datePtr("2024-09-20")},
	})
	require.NoError(t, err)

	// one batch shares created_at, so only position orders it
	require.NoError(t, db.Model(&domain.Drive{}).Where("student_id = ?", student.ID).
		Update("created_at", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)).Error)

	drives, err := repo.ListDrives(student.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"TCS", "Infosys", "Wipro"}, driveCompanies(drives))
	assert.Equal(t, []int{0, 1, 2}, []int{drives[0].Position, drives[1].Position, drives[2].Position})

	stored, err := repo.FindByID(student.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"TCS", "Infosys", "Wipro"}, driveCompanies(stored.Drives))

	all, err := repo.ListWithDrives()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, []string{"TCS", "Infosys", "Wipro"}, driveCompanies(all[0].Drives))
}

func TestStudentRepository_CreateDrivesContinuesPositions(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStudentRepository(db)

	student := &domain.Student{RollNumber: "2024002", Name: "Diya", Branch: "ECE", Year: 4}
	require.NoError(t, repo.UpsertWithDrives(student, []domain.Drive{{CompanyName: "TCS"}, {CompanyName: "Infosys"}}))

	added := []domain.Drive{
		{StudentID: student.ID, CompanyName: "Wipro"},
		{StudentID: student.ID, CompanyName: "TCS"},
	}
	require.NoError(t, repo.CreateDrives(added))
	assert.Equal(t, 2, added[0].Position)
	assert.Equal(t, 3, added[1].Position)
	assert.NotEqual(t, uuid.Nil, added[1].ID)

	drives, err := repo.ListDrives(student.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"TCS", "Infosys", "Wipro", "TCS"}, driveCompanies(drives), "manual entries are never skipped")
}

func TestStudentRepository_ReimportSkipsStoredDrives(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStudentRepository(db)

	batch := func() []domain.Drive {
		return []domain.Drive{
			{CompanyName: "TCS", Date: datePtr("2024-08-12")},
			{CompanyName: "Infosys", Date: datePtr("2024-09-03")},
		}
	}
	student := &domain.Student{RollNumber: "2024002", Name: "Diya", Branch: "ECE", Year: 4}
	require.NoError(t, repo.UpsertWithDrives(student, batch()))

	again := &domain.Student{RollNumber: "2024002", Name: "Diya Patel", Branch: "ECE", Year: 4}
	require.NoError(t, repo.UpsertWithDrives(again, append(batch(), domain.Drive{CompanyName: "Wipro", Date: datePtr("2024-09-20")})))

	require.NoError(t, repo.ImportDrives(student.ID, []domain.Drive{
		{CompanyName: "tcs ", Date: datePtr("2024-08-12")},
		{CompanyName: "TCS", Date: datePtr("2024-10-01")},
	}))

	drives, err := repo.ListDrives(student.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"TCS", "Infosys", "Wipro", "TCS"}, driveCompanies(drives))
	assert.Equal(t, 3, drives[3].Position)
}

func TestStudentRepository_ListFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStudentRepository(db)

	require.NoError(t, repo.Create(&domain.Student{RollNumber: "1", Name: "Aarav", Branch: "CSE", Year: 3, Selected: true}))
	require.NoError(t, repo.Create(&domain.Student{RollNumber: "2", Name: "Diya", Branch: "ECE", Year: 3}))
	require.NoError(t, repo.Create(&domain.Student{RollNumber: "3", Name: "Kabir", Branch: "CSE", Year: 4}))

	students, total, err := repo.List(StudentFilter{Branch: "CSE"}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, students, 2)

	year := 3
	selected := true
	students, total, err = repo.List(StudentFilter{Year: &year, Selected: &selected}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Aarav", students[0].Name)

	students, total, err = repo.List(StudentFilter{Search: "DIY"}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "2", students[0].RollNumber)

	students, total, err = repo.List(StudentFilter{}, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, students, 1)
	assert.Equal(t, "3", students[0].RollNumber)
}

func TestStudentRepository_DeleteDrive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStudentRepository(db)

	s := &domain.Student{RollNumber: "9", Name: "Ira"}
	require.NoError(t, repo.UpsertWithDrives(s, []domain.Drive{{CompanyName: "Wipro"}}))

	drives, err := repo.ListDrives(s.ID)
	require.NoError(t, err)
	require.Len(t, drives, 1)

	assert.ErrorIs(t, repo.DeleteDrive(uuid.New(), drives[0].ID), gorm.ErrRecordNotFound, "drive of another student")
	require.NoError(t, repo.DeleteDrive(s.ID, drives[0].ID))

	drives, err = repo.ListDrives(s.ID)
	require.NoError(t, err)
	assert.Empty(t, drives)
}

func TestStudentRepository_DeleteRemovesDrives(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStudentRepository(db)

	s := &domain.Student{RollNumber: "7", Name: "Zoya"}
	require.NoError(t, repo.UpsertWithDrives(s, []domain.Drive{{CompanyName: "HCL"}, {CompanyName: "TCS"}}))
	require.NoError(t, repo.Delete(s.ID))

	_, err := repo.FindByRollNumber("7")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var count int64
	db.Model(&domain.Drive{}).Count(&count)
	assert.Zero(t, count)
}

func TestAlumniRepository_UpsertByRollNumber(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAlumniRepository(db)

	a := &domain.Alumni{
		Name: "Rohan", RollNumber: "2019001", PassOutYear: 2023, CurrentStatus: domain.AlumniJob,
		Address: "Pune", ContactNumber: "9000000000", Email: "rohan@example.com", CompanyName: strPtr("TCS"),
	}
	require.NoError(t, repo.UpsertByRollNumber(a))

	again := &domain.Alumni{
		Name: "Rohan K", RollNumber: "2019001", PassOutYear: 2023, CurrentStatus: domain.AlumniHigherEducation,
		Address: "Pune", ContactNumber: "9000000000", Email: "rohan@example.com", UniversityName: strPtr("IISc"),
	}
	require.NoError(t, repo.UpsertByRollNumber(again))

	stored, err := repo.FindByRollNumber("2019001")
	require.NoError(t, err)
	assert.Equal(t, "Rohan K", stored.Name)
	assert.Equal(t, domain.AlumniHigherEducation, stored.CurrentStatus)
	assert.Nil(t, stored.CompanyName)
	require.NotNil(t, stored.UniversityName)
	assert.Equal(t, "IISc", *stored.UniversityName)

	_, total, err := repo.List(AlumniFilter{}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestAttendanceRepository_UpsertIsPerEventAndRoll(t *testing.T) {
	db := setupTestDB(t)
	events := NewEventRepository(db)
	repo := NewAttendanceRepository(db)

	now := time.Now().UTC()
	ev := &domain.Event{Title: "Drive", Description: "TCS drive", Company: "TCS", StartDate: now, EndDate: now.Add(time.Hour)}
	require.NoError(t, events.Create(ev))

	require.NoError(t, repo.Upsert(&domain.Attendance{EventID: ev.ID, RollNumber: "1", StudentName: "Aarav"}))
	require.NoError(t, repo.Upsert(&domain.Attendance{EventID: ev.ID, RollNumber: "1", StudentName: "Aarav S", Year: 3}))
	require.NoError(t, repo.Upsert(&domain.Attendance{EventID: ev.ID, RollNumber: "2", StudentName: "Diya"}))

	list, err := repo.ListByEvent(ev.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Aarav S", list[0].StudentName)
	assert.Equal(t, 3, list[0].Year)

	require.NoError(t, events.Delete(ev.ID))
	count, err := repo.CountByEvent(ev.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	exists, err := events.Exists(ev.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestAuthRepository_RevokeFamilyAndBlacklist(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAuthRepository(db)

	userID := uuid.New()
	family := uuid.New()
	for _, hash := range []string{"a", "b"} {
		require.NoError(t, repo.CreateRefreshToken(&domain.RefreshToken{
			UserID: userID, TokenHash: hash, FamilyID: family, ExpiresAt: time.Now().Add(time.Hour),
		}))
	}

	require.NoError(t, repo.RevokeTokenFamily(family, "reuse_detected"))
	tok, err := repo.FindRefreshTokenByHash("b")
	require.NoError(t, err)
	assert.True(t, tok.IsRevoked)
	require.NotNil(t, tok.RevokedReason)
	assert.Equal(t, "reuse_detected", *tok.RevokedReason)

	listed, err := repo.IsTokenBlacklisted("jti-1")
	require.NoError(t, err)
	assert.False(t, listed)

	require.NoError(t, repo.BlacklistToken("jti-1", &userID, time.Now().Add(time.Minute), "logout"))
	listed, err = repo.IsTokenBlacklisted("jti-1")
	require.NoError(t, err)
	assert.True(t, listed)
}

func TestUserRepository_FindByUsernameOrEmail(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	u := &domain.User{Username: "tpo", Email: "tpo@college.edu", PasswordHash: "x", Name: "TPO", Role: domain.RoleAdmin, IsActive: true}
	require.NoError(t, repo.Create(u))

	byName, err := repo.FindByUsernameOrEmail("tpo")
	require.NoError(t, err)
	byMail, err := repo.FindByUsernameOrEmail("tpo@college.edu")
	require.NoError(t, err)
	assert.Equal(t, byName.ID, byMail.ID)

	_, err = repo.FindByUsernameOrEmail("nobody")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repo.TouchLastLogin(u.ID))
	stored, err := repo.FindByID(u.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLoginAt)
}
