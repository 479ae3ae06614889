package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

var templates = map[Kind]string{
	KindStudents: "name,rollNumber,branch,year,batch,email,phone,selected,companyName,package,role,photoUrl,offerLetterUrl,idCardUrl," +
		"driveCompanyName,driveDate,driveRoundsQualified,driveRoundsName,driveFailedRound,driveStatus,driveOfferPackage,driveNotes\n" +
		"Aarav Sharma,2024001,CSE,4,2021-2025,aarav@college.edu,9876500001,true,Infosys,6.5,Systems Engineer,,,,,,,,,,,\n" +
		`Diya Patel,2024002,ECE,4,2021-2025,diya@college.edu,9876500002,false,,,,,,,TCS,12-08-2024,2,"Aptitude, Technical",HR,not shortlisted,,` + "\n" +
		`Diya Patel,2024002,ECE,4,2021-2025,diya@college.edu,9876500002,false,,,,,,,Infosys,03-09-2024,1,Aptitude,Technical,not shortlisted,,Retry next cycle` + "\n",
	KindDriveDetails: "rollNumber,companyName,date,roundsQualified,roundsName,failedRound,status,offerPackage,notes\n" +
		`2024002,Wipro,20-09-2024,3,"Aptitude, Technical, HR",None,shortlisted,4.5,` + "\n",
	KindEvents: "title,description,company,startDate,endDate,notificationLink,attachmentUrl\n" +
		"Campus Drive 2025,Pool campus drive for final year students,Accenture,2025-01-10T09:00:00Z,2025-01-10T17:00:00Z,https://example.com/notice,\n",
	KindAlumni: "name,rollNumber,passOutYear,currentStatus,address,contactNumber,email,companyName,designation,package,universityName,courseName,idCardUrl,linkedinUrl\n" +
		`Rohan Mehta,2019045,2023,job,"12 MG Road, Pune",9876500003,rohan@example.com,Capgemini,Analyst,5.2,,,https://example.com/id.png,` + "\n",
	KindAttendance: "studentName,rollNumber,eventId,branch,year\n" +
		"Aarav Sharma,2024001,,CSE,4\n",
}

// Template returns the CSV skeleton for k: the header row in column
// order followed by sample rows.
func Template(k Kind) (string, error) {
	t, ok := templates[k]
	if !ok {
		return "", ErrUnknownKind
	}
	return t, nil
}

// TemplateFilename is the download name for k's template.
func TemplateFilename(k Kind, ext string) string {
	return fmt.Sprintf("template_import_%s.%s", k, ext)
}

// WriteTemplateXLSX renders k's template as a workbook.
func WriteTemplateXLSX(w io.Writer, k Kind) error {
	t, err := Template(k)
	if err != nil {
		return err
	}
	records, err := csv.NewReader(strings.NewReader(t)).ReadAll()
	if err != nil {
		return fmt.Errorf("failed to read template: %w", err)
	}
	return WriteXLSX(w, records)
}

// WriteXLSX writes records to the first sheet of a new workbook, first
// record as header.
func WriteXLSX(w io.Writer, records [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, record := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(record))
		for j, v := range record {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	return f.Write(w)
}
