package domain

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Enum types
type UserRole string

const (
	RoleAdmin       UserRole = "admin"
	RoleCoordinator UserRole = "coordinator"
)

type DriveStatus string

const (
	DriveShortlisted    DriveStatus = "shortlisted"
	DriveNotShortlisted DriveStatus = "not shortlisted"
)

type AlumniStatus string

const (
	AlumniHigherEducation AlumniStatus = "higher_education"
	AlumniJob             AlumniStatus = "job"
)

// JSONB type for GORM
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// Base model with soft delete
type BaseModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"-"`
}

// User - TPO staff account
type User struct {
	BaseModel
	Username     string     `gorm:"type:varchar(30);not null;uniqueIndex" json:"username"`
	Email        string     `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	PasswordHash string     `gorm:"type:varchar(255);not null" json:"-"`
	Name         string     `gorm:"type:varchar(100);not null" json:"name"`
	Role         UserRole   `gorm:"type:varchar(20);not null;default:'coordinator'" json:"role"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

func (User) TableName() string { return "users" }

// Student - a student tracked by the placement office
type Student struct {
	BaseModel
	RollNumber     string   `gorm:"type:varchar(30);not null;uniqueIndex" json:"roll_number"`
	Name           string   `gorm:"type:varchar(100);not null" json:"name"`
	Branch         string   `gorm:"type:varchar(50)" json:"branch"`
	Year           int      `gorm:"type:smallint" json:"year"`
	Batch          string   `gorm:"type:varchar(20)" json:"batch"`
	Email          string   `gorm:"type:varchar(255)" json:"email"`
	Phone          string   `gorm:"type:varchar(20)" json:"phone"`
	Selected       bool     `gorm:"not null;default:false" json:"selected"`
	CompanyName    *string  `gorm:"type:varchar(100)" json:"company_name,omitempty"`
	Package        *float64 `json:"package,omitempty"`
	Role           *string  `gorm:"type:varchar(100)" json:"role,omitempty"`
	PhotoURL       *string  `gorm:"type:text" json:"photo_url,omitempty"`
	OfferLetterURL *string  `gorm:"type:text" json:"offer_letter_url,omitempty"`
	IDCardURL      *string  `gorm:"type:text" json:"id_card_url,omitempty"`
	Drives         []Drive  `gorm:"foreignKey:StudentID" json:"drives,omitempty"`
}

func (Student) TableName() string { return "students" }

// Drive - one recruitment drive a student sat
type Drive struct {
	ID              uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID       uuid.UUID   `gorm:"type:uuid;not null;index" json:"student_id"`
	CompanyName     string      `gorm:"type:varchar(100);not null" json:"company_name"`
	Date            *time.Time  `gorm:"type:date" json:"date,omitempty"`
	RoundsQualified int         `gorm:"not null;default:0" json:"rounds_qualified"`
	RoundsName      string      `gorm:"type:text" json:"rounds_name"`
	FailedRound     string      `gorm:"type:varchar(100)" json:"failed_round"`
	Status          DriveStatus `gorm:"type:varchar(20)" json:"status"`
	OfferPackage    *float64    `json:"offer_package,omitempty"`
	Notes           *string     `gorm:"type:text" json:"notes,omitempty"`
	Position        int         `gorm:"not null;default:0" json:"position"`
	CreatedAt       time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	Student         *Student    `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

func (Drive) TableName() string { return "drives" }

// Event - placement office event (drive announcement, talk, workshop)
type Event struct {
	BaseModel
	Title            string       `gorm:"type:varchar(200);not null" json:"title"`
	Description      string       `gorm:"type:text;not null" json:"description"`
	Company          string       `gorm:"type:varchar(100);not null" json:"company"`
	StartDate        time.Time    `gorm:"not null" json:"start_date"`
	EndDate          time.Time    `gorm:"not null" json:"end_date"`
	NotificationLink *string      `gorm:"type:text" json:"notification_link,omitempty"`
	AttachmentURL    *string      `gorm:"type:text" json:"attachment_url,omitempty"`
	Attendance       []Attendance `gorm:"foreignKey:EventID" json:"attendance,omitempty"`
}

func (Event) TableName() string { return "events" }

// Alumni - passed-out student
type Alumni struct {
	BaseModel
	Name           string       `gorm:"type:varchar(100);not null" json:"name"`
	RollNumber     string       `gorm:"type:varchar(30);not null;uniqueIndex" json:"roll_number"`
	PassOutYear    int          `gorm:"not null" json:"pass_out_year"`
	CurrentStatus  AlumniStatus `gorm:"type:varchar(20);not null" json:"current_status"`
	Address        string       `gorm:"type:text;not null" json:"address"`
	ContactNumber  string       `gorm:"type:varchar(20);not null" json:"contact_number"`
	Email          string       `gorm:"type:varchar(255);not null" json:"email"`
	CompanyName    *string      `gorm:"type:varchar(100)" json:"company_name,omitempty"`
	Designation    *string      `gorm:"type:varchar(100)" json:"designation,omitempty"`
	Package        *float64     `json:"package,omitempty"`
	UniversityName *string      `gorm:"type:varchar(150)" json:"university_name,omitempty"`
	CourseName     *string      `gorm:"type:varchar(150)" json:"course_name,omitempty"`
	IDCardURL      *string      `gorm:"type:text" json:"id_card_url,omitempty"`
	LinkedinURL    *string      `gorm:"type:text" json:"linkedin_url,omitempty"`
}

func (Alumni) TableName() string { return "alumni" }

// Attendance - one student present at one event
type Attendance struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EventID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_attendance_event_roll" json:"event_id"`
	RollNumber  string    `gorm:"type:varchar(30);not null;uniqueIndex:idx_attendance_event_roll" json:"roll_number"`
	StudentName string    `gorm:"type:varchar(100);not null" json:"student_name"`
	Branch      string    `gorm:"type:varchar(50)" json:"branch"`
	Year        int       `gorm:"type:smallint" json:"year"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	Event       *Event    `gorm:"foreignKey:EventID" json:"event,omitempty"`
}

func (Attendance) TableName() string { return "attendance" }

// RefreshToken
type RefreshToken struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID  `gorm:"type:uuid;not null" json:"user_id"`
	TokenHash     string     `gorm:"type:varchar(64);not null;uniqueIndex" json:"-"`
	FamilyID      uuid.UUID  `gorm:"type:uuid;not null" json:"family_id"`
	DeviceInfo    JSONB      `gorm:"type:jsonb" json:"device_info,omitempty"`
	IPAddress     *string    `gorm:"type:varchar(45)" json:"ip_address,omitempty"`
	IsRevoked     bool       `gorm:"not null;default:false" json:"is_revoked"`
	RevokedAt     *time.Time `json:"revoked_at,omitempty"`
	RevokedReason *string    `gorm:"type:varchar(100)" json:"revoked_reason,omitempty"`
	ExpiresAt     time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt     time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	LastUsedAt    *time.Time `json:"last_used_at,omitempty"`
	User          *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (RefreshToken) TableName() string { return "refresh_tokens" }

// TokenBlacklist
type TokenBlacklist struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	JTI           string     `gorm:"type:varchar(64);not null;uniqueIndex" json:"jti"`
	UserID        *uuid.UUID `gorm:"type:uuid" json:"user_id,omitempty"`
	ExpiresAt     time.Time  `gorm:"not null" json:"expires_at"`
	BlacklistedAt time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"blacklisted_at"`
	Reason        *string    `gorm:"type:varchar(100)" json:"reason,omitempty"`
}

func (TokenBlacklist) TableName() string { return "token_blacklist" }

// AllModels lists every table in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&User{}, &RefreshToken{}, &TokenBlacklist{},
		&Student{}, &Drive{}, &Event{}, &Alumni{}, &Attendance{},
	}
}

func setUUIDIfEmpty(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// BaseModel Hook
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	setUUIDIfEmpty(&m.ID)
	return nil
}

func (m *Drive) BeforeCreate(tx *gorm.DB) error {
	setUUIDIfEmpty(&m.ID)
	return nil
}

func (m *Attendance) BeforeCreate(tx *gorm.DB) error {
	setUUIDIfEmpty(&m.ID)
	return nil
}

func (m *RefreshToken) BeforeCreate(tx *gorm.DB) error {
	setUUIDIfEmpty(&m.ID)
	return nil
}

func (m *TokenBlacklist) BeforeCreate(tx *gorm.DB) error {
	setUUIDIfEmpty(&m.ID)
	return nil
}
